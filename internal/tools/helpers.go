package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/storage"
)

// requireID extracts a required id parameter and checks its format. Every
// entity id in the schema is a UUID; rejecting malformed ids here keeps
// garbage out of the storage layer entirely.
func requireID(req mcp.CallToolRequest, key string) (string, error) {
	v, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", fmt.Errorf("'%s' must be a UUID, got %q", key, v)
	}
	return v, nil
}

// optionalID extracts an optional id parameter, validating format when set.
func optionalID(req mcp.CallToolRequest, key string) (string, error) {
	v := req.GetString(key, "")
	if v == "" {
		return "", nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", fmt.Errorf("'%s' must be a UUID, got %q", key, v)
	}
	return v, nil
}

// searchLimitArg reads the optional limit parameter, applying def and
// rejecting values outside [1, maxSearchLimit].
func searchLimitArg(req mcp.CallToolRequest, def int) (int, error) {
	limit := int(req.GetFloat("limit", float64(def)))
	if limit < 1 || limit > maxSearchLimit {
		return 0, fmt.Errorf("'limit' must be between 1 and %d", maxSearchLimit)
	}
	return limit, nil
}

// updatesArg reads the required updates object parameter.
func updatesArg(req mcp.CallToolRequest) (map[string]any, error) {
	v, ok := req.GetArguments()["updates"]
	if !ok || v == nil {
		return nil, fmt.Errorf("'updates' is required")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("'updates' must be an object mapping field names to values")
	}
	return m, nil
}

// envelope renders the uniform tool result: a human summary line, followed by
// the structured payload as indented JSON when there is one.
func envelope(summary string, payload any) *mcp.CallToolResult {
	if payload == nil {
		return mcp.NewToolResultText(summary)
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(summary)
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(b))
}

// rowID extracts the id column of a persisted row as text.
func rowID(row storage.Row) string {
	switch v := row["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
