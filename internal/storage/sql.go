package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// dialect captures what differs between the supported backends at the SQL
// level. Error wording differences live in Translate, not here.
type dialect interface {
	driverName() string
	placeholder(n int) string // 1-based
	matchOp() string          // case-insensitive LIKE operator
}

// SQLClient implements Client over database/sql for any registered dialect.
type SQLClient struct {
	db *sql.DB
	d  dialect
}

// Close releases the underlying connection pool.
func (c *SQLClient) Close() error {
	return c.db.Close()
}

func open(d dialect, dsn string) (*SQLClient, error) {
	db, err := openDB(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.driverName(), err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", d.driverName(), err)
	}
	return &SQLClient{db: db, d: d}, nil
}

// Select implements Client.
func (c *SQLClient) Select(ctx context.Context, table string, columns []string, filter Filter, limit int) ([]Row, error) {
	query, args := buildSelect(c.d, table, columns, filter, limit)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// SelectMatch implements Client.
func (c *SQLClient) SelectMatch(ctx context.Context, table string, columns []string, query string, searchColumns []string, limit int) ([]Row, error) {
	stmt, args := buildMatch(c.d, table, columns, query, searchColumns, limit)
	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// Insert implements Client.
func (c *SQLClient) Insert(ctx context.Context, table string, row Row) (Row, error) {
	query, args := buildInsert(c.d, table, row)
	return c.queryOne(ctx, query, args)
}

// Update implements Client.
func (c *SQLClient) Update(ctx context.Context, table string, filter Filter, changes Row) ([]Row, error) {
	query, args := buildUpdate(c.d, table, filter, changes)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// Upsert implements Client.
func (c *SQLClient) Upsert(ctx context.Context, table string, row Row, conflictColumn string) (Row, error) {
	query, args := buildUpsert(c.d, table, row, conflictColumn)
	return c.queryOne(ctx, query, args)
}

// Delete implements Client.
func (c *SQLClient) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	query, args := buildDelete(c.d, table, filter)
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *SQLClient) queryOne(ctx context.Context, query string, args []any) (Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, sql.ErrNoRows
	}
	return all[0], nil
}

// ─── Statement building ──────────────────────────────────────────────────────

// stmt accumulates positional arguments so placeholder numbering stays
// consistent across clause builders.
type stmt struct {
	d    dialect
	args []any
}

func (s *stmt) bind(v any) string {
	s.args = append(s.args, v)
	return s.d.placeholder(len(s.args))
}

// where renders filter as an ANDed condition list. Keys are sorted so the
// generated SQL is deterministic and testable.
func (s *stmt) where(filter Filter) string {
	if len(filter) == 0 {
		return ""
	}
	keys := sortedKeys(filter)
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := filter[k].(type) {
		case nil:
			conds = append(conds, k+" IS NULL")
		case []string:
			conds = append(conds, s.inClause(k, stringsToAny(v)))
		case []any:
			conds = append(conds, s.inClause(k, v))
		default:
			conds = append(conds, k+" = "+s.bind(v))
		}
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (s *stmt) inClause(column string, values []any) string {
	if len(values) == 0 {
		// An empty IN list matches nothing; render a constant false.
		return "1 = 0"
	}
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = s.bind(v)
	}
	return column + " IN (" + strings.Join(ph, ", ") + ")"
}

func buildSelect(d dialect, table string, columns []string, filter Filter, limit int) (string, []any) {
	s := &stmt{d: d}
	query := "SELECT " + columnList(columns) + " FROM " + table + s.where(filter)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}
	return query, s.args
}

func buildMatch(d dialect, table string, columns []string, query string, searchColumns []string, limit int) (string, []any) {
	s := &stmt{d: d}
	pattern := "%" + escapeLike(query) + "%"
	conds := make([]string, len(searchColumns))
	for i, col := range searchColumns {
		conds[i] = col + " " + d.matchOp() + " " + s.bind(pattern) + ` ESCAPE '\'`
	}
	sql := "SELECT " + columnList(columns) + " FROM " + table +
		" WHERE " + strings.Join(conds, " OR ")
	if limit > 0 {
		sql += " LIMIT " + strconv.Itoa(limit)
	}
	return sql, s.args
}

func buildInsert(d dialect, table string, row Row) (string, []any) {
	s := &stmt{d: d}
	keys := sortedKeys(row)
	ph := make([]string, len(keys))
	for i, k := range keys {
		ph[i] = s.bind(row[k])
	}
	query := "INSERT INTO " + table + " (" + strings.Join(keys, ", ") + ")" +
		" VALUES (" + strings.Join(ph, ", ") + ") RETURNING *"
	return query, s.args
}

func buildUpdate(d dialect, table string, filter Filter, changes Row) (string, []any) {
	s := &stmt{d: d}
	keys := sortedKeys(changes)
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = k + " = " + s.bind(changes[k])
	}
	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") +
		s.where(filter) + " RETURNING *"
	return query, s.args
}

func buildUpsert(d dialect, table string, row Row, conflictColumn string) (string, []any) {
	s := &stmt{d: d}
	keys := sortedKeys(row)
	ph := make([]string, len(keys))
	sets := make([]string, 0, len(keys))
	for i, k := range keys {
		ph[i] = s.bind(row[k])
		if k != conflictColumn {
			sets = append(sets, k+" = EXCLUDED."+k)
		}
	}
	if len(sets) == 0 {
		// Nothing beyond the conflict key; a self-assignment still makes the
		// statement return the existing row.
		sets = append(sets, conflictColumn+" = EXCLUDED."+conflictColumn)
	}
	query := "INSERT INTO " + table + " (" + strings.Join(keys, ", ") + ")" +
		" VALUES (" + strings.Join(ph, ", ") + ")" +
		" ON CONFLICT (" + conflictColumn + ") DO UPDATE SET " + strings.Join(sets, ", ") +
		" RETURNING *"
	return query, s.args
}

func buildDelete(d dialect, table string, filter Filter) (string, []any) {
	s := &stmt{d: d}
	return "DELETE FROM " + table + s.where(filter), s.args
}

func columnList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	return strings.Join(columns, ", ")
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied query so a
// search for "100%" matches the literal text instead of everything.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// scanRows reads every row into a map, converting []byte values to string so
// callers see text, not driver internals.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
