package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/tally/internal/errs"
)

// Dialect controls placeholder and identifier quoting style.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double" quotes.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backtick` quotes.
	DialectMySQL

	// DialectSQLite uses ? placeholders and "double" quotes.
	DialectSQLite
)

// validOps is the allowlist of comparison operators for WHERE clauses.
// The operator position cannot be parameterized, so anything else is rejected.
var validOps = map[string]bool{
	"=":    true,
	"!=":   true,
	"<>":   true,
	"<":    true,
	">":    true,
	"<=":   true,
	">=":   true,
	"LIKE": true,
}

// SelectBuilder constructs a parameterized aggregate SELECT using a fluent API.
// Values are never interpolated into the SQL string, always passed as args.
//
// Usage:
//
//	sql, args, err := Select("votes", DialectPostgres).
//	    Columns("vote").
//	    Count("id", "count").
//	    GroupBy("vote").
//	    Build()
type SelectBuilder struct {
	table   string
	dialect Dialect
	columns []string
	counts  []countClause
	where   []whereClause
	groupBy []string
}

type countClause struct {
	column string
	alias  string
}

type whereClause struct {
	column string
	op     string
	value  any
}

// Select starts a new SelectBuilder for the given table and dialect.
func Select(table string, d Dialect) *SelectBuilder {
	return &SelectBuilder{table: table, dialect: d}
}

// Columns adds plain columns to the select list.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

// Count adds COUNT(column) AS alias to the select list.
func (b *SelectBuilder) Count(column, alias string) *SelectBuilder {
	b.counts = append(b.counts, countClause{column, alias})
	return b
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.where = append(b.where, whereClause{column, op, value})
	return b
}

// GroupBy appends grouping columns.
func (b *SelectBuilder) GroupBy(cols ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// Build produces the final SQL string and argument slice.
// Returns an error if any WHERE operator is not in the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	selectList := make([]string, 0, len(b.columns)+len(b.counts))
	for _, c := range b.columns {
		selectList = append(selectList, b.quote(c))
	}
	for _, c := range b.counts {
		selectList = append(selectList, fmt.Sprintf("COUNT(%s) AS %s", b.quote(c.column), b.quote(c.alias)))
	}
	if len(selectList) == 0 {
		selectList = append(selectList, "*")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectList, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.quote(b.table))

	var args []any
	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for i, w := range b.where {
			op := strings.ToUpper(w.op)
			if !validOps[op] {
				return "", nil, errs.New(errs.ErrKindInvalidInput,
					fmt.Sprintf("unsupported WHERE operator: %q", w.op))
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", b.quote(w.column), op, b.placeholder(i+1)))
			args = append(args, w.value)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.groupBy) > 0 {
		quoted := make([]string, len(b.groupBy))
		for i, c := range b.groupBy {
			quoted[i] = b.quote(c)
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(quoted, ", "))
	}

	return sb.String(), args, nil
}

// placeholder returns the parameter placeholder for the dialect.
// Postgres: $1, $2, …   MySQL, SQLite: ? (index is ignored)
func (b *SelectBuilder) placeholder(idx int) string {
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

// quote wraps a SQL identifier in the dialect's identifier quotes.
func (b *SelectBuilder) quote(name string) string {
	if b.dialect == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
