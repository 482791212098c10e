package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// Filter is one WHERE predicate.
type Filter struct {
	Column string
	Op     string // eq, neq, gte, lte, in, isnull
	Value  any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: "eq", Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: "neq", Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: "gte", Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: "lte", Value: value} }

func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: "in", Value: values}
}

// Query shapes a Select.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

var opSQL = map[string]string{
	"eq":  "=",
	"neq": "<>",
	"gte": ">=",
	"lte": "<=",
}

// buildWhere renders filters into a WHERE clause with $n placeholders
// starting at next.
func buildWhere(filters []Filter, next int) (string, []any, int) {
	if len(filters) == 0 {
		return "", nil, next
	}
	var (
		parts []string
		args  []any
	)
	for _, f := range filters {
		col := pq.QuoteIdentifier(f.Column)
		switch f.Op {
		case "in":
			values, _ := f.Value.([]any)
			if len(values) == 0 {
				parts = append(parts, "FALSE")
				continue
			}
			holders := make([]string, len(values))
			for i, v := range values {
				holders[i] = fmt.Sprintf("$%d", next)
				args = append(args, v)
				next++
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", col, strings.Join(holders, ", ")))
		case "isnull":
			parts = append(parts, fmt.Sprintf("%s IS NULL", col))
		default:
			op, ok := opSQL[f.Op]
			if !ok {
				op = "="
			}
			parts = append(parts, fmt.Sprintf("%s %s $%d", col, op, next))
			args = append(args, f.Value)
			next++
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, next
}

func (c *Client) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	query := "SELECT * FROM " + pq.QuoteIdentifier(table)
	where, args, _ := buildWhere(q.Filters, 1)
	query += where
	if q.OrderBy != "" {
		query += " ORDER BY " + pq.QuoteIdentifier(q.OrderBy)
		if q.Desc {
			query += " DESC"
		}
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	var out []Row
	err := c.run(ctx, func(qr querier) error {
		rows, err := qr.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanRows(rows)
		return err
	})
	return out, err
}

func (c *Client) Insert(ctx context.Context, table string, row Row) (Row, error) {
	cols := sortedKeys(row)
	quoted := make([]string, len(cols))
	holders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = pq.QuoteIdentifier(col)
		holders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(holders, ", "))

	var out Row
	err := c.run(ctx, func(qr querier) error {
		rows, err := qr.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		scanned, err := scanRows(rows)
		if err != nil {
			return err
		}
		if len(scanned) == 0 {
			return sql.ErrNoRows
		}
		out = scanned[0]
		return nil
	})
	return out, err
}

func (c *Client) Update(ctx context.Context, table string, filters []Filter, patch Row) ([]Row, error) {
	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	next := 1
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(col), next)
		args = append(args, patch[col])
		next++
	}
	where, whereArgs, _ := buildWhere(filters, next)
	args = append(args, whereArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s%s RETURNING *",
		pq.QuoteIdentifier(table), strings.Join(sets, ", "), where)

	var out []Row
	err := c.run(ctx, func(qr querier) error {
		rows, err := qr.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanRows(rows)
		return err
	})
	return out, err
}

func (c *Client) Delete(ctx context.Context, table string, filters []Filter) (int64, error) {
	where, args, _ := buildWhere(filters, 1)
	query := "DELETE FROM " + pq.QuoteIdentifier(table) + where

	var affected int64
	err := c.run(ctx, func(qr querier) error {
		res, err := qr.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func (c *Client) Count(ctx context.Context, table string, filters []Filter) (int, error) {
	where, args, _ := buildWhere(filters, 1)
	query := "SELECT COUNT(*) AS n FROM " + pq.QuoteIdentifier(table) + where

	var n int
	err := c.run(ctx, func(qr querier) error {
		rows, err := qr.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			return rows.Err()
		}
		return rows.Scan(&n)
	})
	return n, err
}

// Call invokes a stored procedure with named arguments.
func (c *Client) Call(ctx context.Context, proc string, args map[string]any) error {
	names := sortedKeys(args)
	parts := make([]string, len(names))
	values := make([]any, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s => $%d", pq.QuoteIdentifier(name), i+1)
		values[i] = args[name]
	}
	query := fmt.Sprintf("SELECT %s(%s)", pq.QuoteIdentifier(proc), strings.Join(parts, ", "))
	return c.run(ctx, func(qr querier) error {
		_, err := qr.ExecContext(ctx, query, values...)
		return err
	})
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scanRows reads every row into a generic map, normalizing []byte
// column values to string.
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
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
