// crmbase: CRM MCP Server
//
// Exposes CRUD, search, note, and association tools over a CRM database
// (contacts, companies, deals, leads) to any MCP client, with adaptive
// write resilience against schema drift.
//
// Usage:
//
//	crmbase serve          # Start MCP server (stdio transport)
//	crmbase serve --http   # Start MCP server (streamable HTTP transport)
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mrodal/crmbase/internal/config"
	crmserver "github.com/mrodal/crmbase/internal/server"
	"github.com/mrodal/crmbase/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		useHTTP := len(os.Args) > 2 && os.Args[2] == "--http"
		if err := run(useHTTP); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("crmbase v%s\n", crmserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(useHTTP bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("WARNING: closing database: %v", err)
		}
	}()

	s := crmserver.New(store, cfg.NoteAuthor)

	if useHTTP {
		return serveHTTP(s, cfg)
	}
	// Stdio transport: stdout belongs to the protocol, so all logging in
	// this process goes to stderr.
	return server.ServeStdio(s)
}

func openStore(cfg config.Config) (*storage.SQLClient, error) {
	if cfg.Driver == config.DriverSQLite {
		return storage.OpenSQLite(cfg.DatabaseURL)
	}
	return storage.OpenPostgres(cfg.DatabaseURL)
}

// serveHTTP runs the streamable HTTP transport at /mcp with an optional
// bearer-token guard, shutting down gracefully on SIGINT/SIGTERM.
func serveHTTP(s *server.MCPServer, cfg config.Config) error {
	streamServer := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", authGuard(cfg.AuthToken, streamServer))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("crmbase MCP server listening on %s (endpoint /mcp)", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// authGuard rejects requests lacking the configured bearer token before the
// MCP layer runs. An empty token disables the check (local deployments).
func authGuard(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	want := "Bearer " + token
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != want {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `crmbase v%s — CRM MCP Server

Usage:
  crmbase serve          Start the MCP server (stdio transport)
  crmbase serve --http   Start the MCP server (streamable HTTP transport)

Configuration (environment, .env honored):
  CRM_DATABASE_URL     connection string (required)
  CRM_DATABASE_DRIVER  postgres (default) or sqlite
  CRM_HTTP_ADDR        HTTP listen address (default :8080)
  CRM_AUTH_TOKEN       bearer token required on HTTP requests (optional)
  CRM_NOTE_AUTHOR      default author recorded on notes (default mcp)

MCP client configuration (stdio):

  {
    "mcpServers": {
      "crmbase": {
        "command": "crmbase",
        "args": ["serve"]
      }
    }
  }
`, crmserver.Version)
}
