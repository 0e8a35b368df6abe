package storage

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// FailureKind tags a storage error with its structural cause. The adaptive
// write logic keys off these tags instead of raw backend wording.
type FailureKind int

const (
	// FailureOther is any error not covered by a more specific kind.
	FailureOther FailureKind = iota
	// FailureUndefinedColumn means the statement referenced a column the
	// table does not have. Column names the offender.
	FailureUndefinedColumn
	// FailureUndefinedTable means the table (or junction relation) itself
	// does not exist. Table names it.
	FailureUndefinedTable
	// FailureNotNull means a NOT NULL constraint rejected the row. Column
	// names the constrained column.
	FailureNotNull
	// FailureRLS means a row-level security policy or privilege check
	// denied the operation.
	FailureRLS
	// FailureForeignKey means a foreign key constraint rejected the row.
	FailureForeignKey
	// FailureNoRows means a single-row lookup matched nothing.
	FailureNoRows
)

// Failure is the translated form of a storage error: a closed, tagged
// outcome the rest of the system can switch on.
type Failure struct {
	Kind   FailureKind
	Column string // set for FailureUndefinedColumn and FailureNotNull
	Table  string // set for FailureUndefinedTable when the backend names it
	Err    error  // the original error
}

// Postgres (lib/pq) SQLSTATE codes for the outcomes we care about.
const (
	pgUndefinedColumn   = "42703"
	pgUndefinedTable    = "42P01"
	pgNotNullViolation  = "23502"
	pgForeignKeyViolate = "23503"
	pgInsufficientPriv  = "42501"
)

// Message patterns, covering Postgres wording, SQLite wording, and the bare
// phrasing used by non-SQL stores speaking the same dialect. These exist so
// Translate keeps working when the error did not survive as a typed driver
// error (wrapped, serialized, or produced by a test double).
var (
	rePgColumn     = regexp.MustCompile(`column "([^"]+)"(?: of relation "[^"]+")? does not exist`)
	rePgNotNull    = regexp.MustCompile(`null value in column "([^"]+)"`)
	rePgTable      = regexp.MustCompile(`relation "([^"]+)" does not exist`)
	reLiteColumn   = regexp.MustCompile(`no such column:? "?(?:\w+\.)?(\w+)"?`)
	reLiteNotNull  = regexp.MustCompile(`NOT NULL constraint failed: \w+\.(\w+)`)
	reLiteTable    = regexp.MustCompile(`no such table:? "?([\w.]+)"?`)
	rePlainColumn  = regexp.MustCompile(`column "?([\w.]+)"? does not exist`)
	rePlainNotNull = regexp.MustCompile(`null value in column "?([\w.]+)"?`)
)

// Translate maps a raw storage error into a tagged Failure. It is the single
// place the backend's error dialect is interpreted; adapting the bridge to a
// store with different wording means updating only this function.
func Translate(err error) Failure {
	if err == nil {
		return Failure{Kind: FailureOther}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Failure{Kind: FailureNoRows, Err: err}
	}

	msg := err.Error()

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUndefinedColumn:
			return Failure{Kind: FailureUndefinedColumn, Column: columnFrom(pqErr.Column, rePgColumn, msg), Err: err}
		case pgNotNullViolation:
			return Failure{Kind: FailureNotNull, Column: columnFrom(pqErr.Column, rePgNotNull, msg), Err: err}
		case pgUndefinedTable:
			return Failure{Kind: FailureUndefinedTable, Table: firstGroup(rePgTable, msg), Err: err}
		case pgForeignKeyViolate:
			return Failure{Kind: FailureForeignKey, Err: err}
		case pgInsufficientPriv:
			return Failure{Kind: FailureRLS, Err: err}
		}
		if strings.Contains(msg, "row-level security") {
			return Failure{Kind: FailureRLS, Err: err}
		}
		return Failure{Kind: FailureOther, Err: err}
	}

	// Message-pattern fallback, most specific patterns first.
	switch {
	case rePgNotNull.MatchString(msg):
		return Failure{Kind: FailureNotNull, Column: firstGroup(rePgNotNull, msg), Err: err}
	case reLiteNotNull.MatchString(msg):
		return Failure{Kind: FailureNotNull, Column: firstGroup(reLiteNotNull, msg), Err: err}
	case rePlainNotNull.MatchString(msg), strings.Contains(msg, "violates not-null constraint"):
		return Failure{Kind: FailureNotNull, Column: firstGroup(rePlainNotNull, msg), Err: err}
	case rePgColumn.MatchString(msg):
		return Failure{Kind: FailureUndefinedColumn, Column: firstGroup(rePgColumn, msg), Err: err}
	case reLiteColumn.MatchString(msg):
		return Failure{Kind: FailureUndefinedColumn, Column: firstGroup(reLiteColumn, msg), Err: err}
	case rePlainColumn.MatchString(msg):
		return Failure{Kind: FailureUndefinedColumn, Column: firstGroup(rePlainColumn, msg), Err: err}
	case rePgTable.MatchString(msg):
		return Failure{Kind: FailureUndefinedTable, Table: firstGroup(rePgTable, msg), Err: err}
	case reLiteTable.MatchString(msg):
		return Failure{Kind: FailureUndefinedTable, Table: firstGroup(reLiteTable, msg), Err: err}
	case strings.Contains(msg, "row-level security"), strings.Contains(msg, "permission denied for table"):
		return Failure{Kind: FailureRLS, Err: err}
	case strings.Contains(msg, "violates foreign key constraint"), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return Failure{Kind: FailureForeignKey, Err: err}
	}
	return Failure{Kind: FailureOther, Err: err}
}

// columnFrom prefers the driver-reported column name and falls back to
// parsing the message. Postgres fills pq.Error.Column for constraint
// violations but not always for undefined-column errors.
func columnFrom(reported string, re *regexp.Regexp, msg string) string {
	if reported != "" {
		return reported
	}
	return firstGroup(re, msg)
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
