package crm

import (
	"fmt"

	"github.com/mrodal/crmbase/internal/storage"
)

// PermissionDeniedError means a row-level security policy (or a privilege
// check) rejected the write for the configured credential.
type PermissionDeniedError struct {
	Table string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied writing to %s: a row-level security policy blocks the configured credential; use an elevated credential or adjust the policy", e.Table)
}

// ConstraintViolationError means a foreign key constraint rejected the write,
// usually because a referenced entity id does not exist.
type ConstraintViolationError struct {
	Table   string
	Message string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation on %s: %s", e.Table, e.Message)
}

// StorageError is any terminal storage failure without a more specific cause.
type StorageError struct {
	Table   string
	Message string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error on %s: %s", e.Table, e.Message)
}

// MissingRelationshipError means the store requires the owning-company
// reference the caller did not supply. Retrying cannot fix this: dropping the
// field is what triggered the constraint.
type MissingRelationshipError struct {
	Table  string
	Column string
}

func (e *MissingRelationshipError) Error() string {
	return fmt.Sprintf("%s requires %s: supply the owning company explicitly or relax the NOT NULL constraint on the store", e.Table, e.Column)
}

// InsertExhaustedError means the adaptive insert ran out of attempts without
// converging on a payload the table accepts.
type InsertExhaustedError struct {
	Table    string
	Attempts int
}

func (e *InsertExhaustedError) Error() string {
	return fmt.Sprintf("insert into %s failed after %d attempts", e.Table, e.Attempts)
}

// Classify turns an unrecoverable storage error into the user-facing terminal
// error for table. It always returns a non-nil error; all write paths funnel
// unclassified failures through here so backend wording is translated in
// exactly one place.
func Classify(table string, err error) error {
	switch f := storage.Translate(err); f.Kind {
	case storage.FailureRLS:
		return &PermissionDeniedError{Table: table}
	case storage.FailureForeignKey:
		return &ConstraintViolationError{Table: table, Message: err.Error()}
	default:
		return &StorageError{Table: table, Message: err.Error()}
	}
}
