package crm

import (
	"context"
	"fmt"

	"github.com/mrodal/crmbase/internal/storage"
)

// OwnerColumn is the column linking an entity to its owning company.
const OwnerColumn = "company_id"

// Writer performs the schema-tolerant write operations. It is stateless
// across calls and safe for concurrent use.
type Writer struct {
	store  storage.Client
	author string // default note author when the caller supplies none
}

// NewWriter creates a Writer over store. defaultAuthor is recorded on notes
// when the caller does not name one.
func NewWriter(store storage.Client, defaultAuthor string) *Writer {
	return &Writer{store: store, author: defaultAuthor}
}

// DefaultAuthor returns the author recorded on notes when none is supplied.
func (w *Writer) DefaultAuthor() string { return w.author }

// ResolveOwner looks up the owning-company id for the entity with the given
// id in table. It returns "" without error when the relationship concept is
// simply absent: the company_id column does not exist, no row matches, or
// the value is null. Any other failure is terminal and classified.
func (w *Writer) ResolveOwner(ctx context.Context, table, entityID string) (string, error) {
	rows, err := w.store.Select(ctx, table, []string{OwnerColumn}, storage.Filter{"id": entityID}, 1)
	if err != nil {
		f := storage.Translate(err)
		if f.Kind == storage.FailureUndefinedColumn && f.Column == OwnerColumn {
			return "", nil
		}
		if f.Kind == storage.FailureNoRows {
			return "", nil
		}
		return "", Classify(table, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	switch v := rows[0][OwnerColumn].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}
