package crm

import (
	"context"
	"fmt"
	"sort"

	"github.com/mrodal/crmbase/internal/storage"
)

// ─── Test doubles ────────────────────────────────────────────────────────────

// fakeStore is a scripted storage.Client. Each Insert consumes the next entry
// of insertErrs (nil = success echoing the payload); Select returns the
// configured rows/error. Payload copies are recorded per attempt.
type fakeStore struct {
	insertErrs []error
	inserts    []storage.Row

	selectRows []storage.Row
	selectErr  error
	selects    int
}

func (f *fakeStore) Insert(_ context.Context, table string, row storage.Row) (storage.Row, error) {
	copied := make(storage.Row, len(row))
	for k, v := range row {
		copied[k] = v
	}
	f.inserts = append(f.inserts, copied)

	attempt := len(f.inserts) - 1
	if attempt < len(f.insertErrs) && f.insertErrs[attempt] != nil {
		return nil, f.insertErrs[attempt]
	}
	copied["id"] = fmt.Sprintf("row-%d", attempt)
	return copied, nil
}

func (f *fakeStore) Select(_ context.Context, table string, columns []string, filter storage.Filter, limit int) ([]storage.Row, error) {
	f.selects++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.selectRows, nil
}

func (f *fakeStore) SelectMatch(context.Context, string, []string, string, []string, int) ([]storage.Row, error) {
	return nil, nil
}

func (f *fakeStore) Update(context.Context, string, storage.Filter, storage.Row) ([]storage.Row, error) {
	return nil, nil
}

func (f *fakeStore) Upsert(context.Context, string, storage.Row, string) (storage.Row, error) {
	return nil, nil
}

func (f *fakeStore) Delete(context.Context, string, storage.Filter) (int64, error) {
	return 0, nil
}

// schemaStore simulates a table with a fixed column set: any payload key
// outside the set fails the insert with a Postgres-style unknown-column
// error naming the first offender (in sorted order, for determinism).
type schemaStore struct {
	columns  map[string]bool
	attempts int
	accepted storage.Row
}

func (s *schemaStore) Insert(_ context.Context, table string, row storage.Row) (storage.Row, error) {
	s.attempts++
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !s.columns[k] {
			return nil, fmt.Errorf("pq: column %q of relation %q does not exist", k, table)
		}
	}
	s.accepted = row
	persisted := make(storage.Row, len(row)+1)
	for k, v := range row {
		persisted[k] = v
	}
	persisted["id"] = "note-1"
	return persisted, nil
}

func (s *schemaStore) Select(context.Context, string, []string, storage.Filter, int) ([]storage.Row, error) {
	return nil, nil
}

func (s *schemaStore) SelectMatch(context.Context, string, []string, string, []string, int) ([]storage.Row, error) {
	return nil, nil
}

func (s *schemaStore) Update(context.Context, string, storage.Filter, storage.Row) ([]storage.Row, error) {
	return nil, nil
}

func (s *schemaStore) Upsert(context.Context, string, storage.Row, string) (storage.Row, error) {
	return nil, nil
}

func (s *schemaStore) Delete(context.Context, string, storage.Filter) (int64, error) {
	return 0, nil
}
