package docstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tailor-backend/internal/query"
)

// timeLayout is fixed-width so that JSON string comparison orders times correctly.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type columnKind int

const (
	kindJSON columnKind = iota
	kindText
	kindTime
)

type fieldExpr struct {
	sql  string
	kind columnKind
}

// sqlBuilder accumulates positional arguments while a statement is assembled.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// field maps a document field to its SQL expression. Store-managed fields map
// to columns; everything else is a path into the data column.
func (b *sqlBuilder) field(name string) fieldExpr {
	switch name {
	case "id":
		return fieldExpr{sql: "id", kind: kindText}
	case "createdAt":
		return fieldExpr{sql: "created_at", kind: kindTime}
	case "updatedAt":
		return fieldExpr{sql: "updated_at", kind: kindTime}
	}
	return fieldExpr{sql: "(data #> " + b.arg(strings.Split(name, ".")) + "::text[])", kind: kindJSON}
}

func (b *sqlBuilder) value(f fieldExpr, v any) (string, error) {
	switch f.kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: id compared to %T", query.ErrInvalid, v)
		}
		return b.arg(s), nil
	case kindTime:
		t, ok := asTime(v)
		if !ok {
			return "", fmt.Errorf("%w: timestamp compared to %T", query.ErrInvalid, v)
		}
		return b.arg(t) + "::timestamptz", nil
	}
	// Times inside data are stored in timeLayout; timestamp strings from callers
	// are rewritten to match.
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			v = t
		}
	}
	raw, err := encodeJSON(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", query.ErrInvalid, err)
	}
	return b.arg(string(raw)) + "::jsonb", nil
}

var sqlOps = map[query.Op]string{
	query.Eq: "=",
	query.Ne: "<>",
	query.Lt: "<",
	query.Le: "<=",
	query.Gt: ">",
	query.Ge: ">=",
}

func (b *sqlBuilder) condition(c query.Constraint) (string, error) {
	f := b.field(c.Field)

	if c.Op == query.In {
		list, _ := query.AsList(c.Value)
		if len(list) == 0 {
			return "FALSE", nil
		}
		vals := make([]string, 0, len(list))
		for _, v := range list {
			s, err := b.value(f, v)
			if err != nil {
				return "", err
			}
			vals = append(vals, s)
		}
		return f.sql + " IN (" + strings.Join(vals, ", ") + ")", nil
	}

	op, ok := sqlOps[c.Op]
	if !ok {
		return "", fmt.Errorf("%w: unknown operator %q", query.ErrInvalid, c.Op)
	}
	v, err := b.value(f, c.Value)
	if err != nil {
		return "", err
	}
	cond := f.sql + " " + op + " " + v
	if f.kind != kindJSON {
		return cond, nil
	}
	// jsonb orders across types; range filters only match same-typed values.
	switch c.Op {
	case query.Eq, query.Ne:
		return cond, nil
	default:
		return "(" + cond + " AND jsonb_typeof(" + f.sql + ") = jsonb_typeof(" + v + "))", nil
	}
}

// cursor builds the keyset predicate for StartAfter: rows strictly after the
// cursor position in the orderBy sequence.
func (b *sqlBuilder) cursor(orders []query.Constraint, cursor []any) (string, error) {
	fields := make([]fieldExpr, len(cursor))
	values := make([]string, len(cursor))
	for i, v := range cursor {
		fields[i] = b.field(orders[i].Field)
		s, err := b.value(fields[i], v)
		if err != nil {
			return "", err
		}
		values[i] = s
	}

	var branches []string
	for i := range cursor {
		var parts []string
		for j := 0; j < i; j++ {
			parts = append(parts, fields[j].sql+" = "+values[j])
		}
		op := ">"
		if orders[i].Direction == query.Desc {
			op = "<"
		}
		parts = append(parts, fields[i].sql+" "+op+" "+values[i])
		branches = append(branches, "("+strings.Join(parts, " AND ")+")")
	}
	return "(" + strings.Join(branches, " OR ") + ")", nil
}

// buildSelect translates q into a statement over the documents table.
func buildSelect(q query.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	b := &sqlBuilder{}

	var sb strings.Builder
	sb.WriteString("SELECT id, data, created_at, updated_at FROM documents WHERE collection = ")
	sb.WriteString(b.arg(q.Path))

	for _, c := range q.Wheres() {
		cond, err := b.condition(c)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(cond)
	}

	orders := q.OrderBys()
	if cur := q.Cursor(); cur != nil {
		cond, err := b.cursor(orders, cur)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(cond)
	}

	sb.WriteString(" ORDER BY ")
	for _, o := range orders {
		f := b.field(o.Field)
		if o.Direction == query.Desc {
			sb.WriteString(f.sql + " DESC NULLS LAST, ")
		} else {
			sb.WriteString(f.sql + " ASC NULLS FIRST, ")
		}
	}
	sb.WriteString("id ASC")

	if n, ok := q.LimitN(); ok {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.arg(n))
	}
	return sb.String(), b.args, nil
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed.UTC(), err == nil
	}
	return time.Time{}, false
}

// encodeJSON marshals a field value with times in timeLayout.
func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(jsonValue(normalize(v)))
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(timeLayout)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	}
	return v
}
