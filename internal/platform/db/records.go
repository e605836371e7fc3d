package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Rows are read back as JSON built by Postgres (to_jsonb), so column types
// never have to be mirrored in Go. Writes go through jsonb_populate_record,
// which leaves type coercion of client values to the database.

// BuildInsert renders an INSERT of one JSON record ($1) into the given
// columns, returning the stored row as JSON.
func BuildInsert(table string, columns []string) string {
	return buildInsert(table, columns, "jsonb_populate_record")
}

// BuildInsertMany is BuildInsert for a JSON array of records.
func BuildInsertMany(table string, columns []string) string {
	return buildInsert(table, columns, "jsonb_populate_recordset")
}

func buildInsert(table string, columns []string, fn string) string {
	tbl := pgx.Identifier{table}.Sanitize()
	cols := quoteColumns(columns)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s(NULL::%s, $1::jsonb) RETURNING to_jsonb(%s.*)",
		tbl, cols, cols, fn, tbl, tbl)
}

// BuildUpdate renders an UPDATE of the row whose id is $2 from the JSON
// record in $1. Columns are emitted in sorted order; callers must only pass
// schema-approved columns.
func BuildUpdate(table string, columns []string) string {
	sorted := append([]string(nil), columns...)
	sort.Strings(sorted)

	sets := make([]string, len(sorted))
	for i, col := range sorted {
		c := pgx.Identifier{col}.Sanitize()
		sets[i] = c + " = r." + c
	}
	tbl := pgx.Identifier{table}.Sanitize()
	return fmt.Sprintf("UPDATE %s AS t SET %s FROM jsonb_populate_record(NULL::%s, $1::jsonb) AS r WHERE t.id = $2 RETURNING to_jsonb(t)",
		tbl, strings.Join(sets, ", "), tbl)
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

// Insert stores record, which must marshal to a JSON object, into table.
// Only keys present in the encoded object become columns, so omitted fields
// keep their database defaults.
func Insert(ctx context.Context, q Querier, table string, record any) (json.RawMessage, error) {
	payload, columns, err := encodeRecord(record)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("platform/db: insert into %s: empty record", table)
	}
	return QueryJSONRow(ctx, q, BuildInsert(table, columns), payload)
}

// InsertMany stores records using a fixed column list.
func InsertMany(ctx context.Context, q Querier, table string, columns []string, records any) ([]json.RawMessage, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("platform/db: encode records: %w", err)
	}
	return QueryJSON(ctx, q, BuildInsertMany(table, columns), string(payload))
}

// Update applies values to the row with the given id and returns it.
func Update(ctx context.Context, q Querier, table string, id string, values map[string]any) (json.RawMessage, error) {
	payload, columns, err := encodeRecord(values)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("platform/db: update %s: no columns", table)
	}
	return QueryJSONRow(ctx, q, BuildUpdate(table, columns), payload, id)
}

// QueryJSON runs a query whose single column is a JSON document and
// collects the rows. The result is never nil.
func QueryJSON(ctx context.Context, q Querier, sql string, args ...any) ([]json.RawMessage, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, Classify(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (json.RawMessage, error) {
		var doc []byte
		if err := row.Scan(&doc); err != nil {
			return nil, err
		}
		return json.RawMessage(doc), nil
	})
	if err != nil {
		return nil, Classify(err)
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

// QueryJSONRow is QueryJSON for exactly one row; no row maps to
// httpx.ErrNotFound.
func QueryJSONRow(ctx context.Context, q Querier, sql string, args ...any) (json.RawMessage, error) {
	var doc []byte
	if err := q.QueryRow(ctx, sql, args...).Scan(&doc); err != nil {
		return nil, Classify(err)
	}
	return json.RawMessage(doc), nil
}

func encodeRecord(record any) (string, []string, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("platform/db: encode record: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil {
		return "", nil, fmt.Errorf("platform/db: record is not an object: %w", err)
	}
	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return string(payload), columns, nil
}
