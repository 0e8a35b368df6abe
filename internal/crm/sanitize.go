// Package crm implements the adaptive-write core of the bridge: update
// sanitizing, owner resolution, schema-tolerant note insertion, and the
// terminal error taxonomy. It talks to the database only through
// storage.Client and decides everything from storage.Translate outcomes.
package crm

import "slices"

// DefaultBlockedFields are immutable columns an update may never touch,
// regardless of the caller-supplied allow-list.
var DefaultBlockedFields = []string{"id", "created_at"}

// SanitizeUpdate filters raw down to the keys present in allowed and absent
// from blocked. A nil blocked list means DefaultBlockedFields. The block-list
// wins even when a blocked key is also allow-listed. Pure function; callers
// must treat an empty result as "nothing to update" and skip the write.
func SanitizeUpdate(raw map[string]any, allowed, blocked []string) map[string]any {
	if blocked == nil {
		blocked = DefaultBlockedFields
	}
	out := make(map[string]any)
	for k, v := range raw {
		if slices.Contains(blocked, k) {
			continue
		}
		if slices.Contains(allowed, k) {
			out[k] = v
		}
	}
	return out
}
