// Package query is a small typed DSL for document-store queries. A Query is a
// collection path plus an ordered list of constraints; constraints are plain
// values so two queries built separately compare equal when their clauses do.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Op is a comparison operator used by Where.
type Op string

const (
	Eq Op = "=="
	Ne Op = "!="
	Lt Op = "<"
	Le Op = "<="
	Gt Op = ">"
	Ge Op = ">="
	In Op = "in"
)

func (o Op) valid() bool {
	switch o {
	case Eq, Ne, Lt, Le, Gt, Ge, In:
		return true
	}
	return false
}

// Direction is a sort direction used by OrderBy.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Kind tags which variant a Constraint holds.
type Kind string

const (
	KindWhere      Kind = "where"
	KindOrderBy    Kind = "orderBy"
	KindLimit      Kind = "limit"
	KindStartAfter Kind = "startAfter"
)

// Constraint is one clause of a query. Only the fields relevant to Type are set.
type Constraint struct {
	Type      Kind      `json:"type"`
	Field     string    `json:"field,omitempty"`
	Op        Op        `json:"op,omitempty"`
	Value     any       `json:"value,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	N         int       `json:"limit,omitempty"`
	Values    []any     `json:"values,omitempty"`
}

// Where filters documents whose field compares to value with op.
func Where(field string, op Op, value any) Constraint {
	return Constraint{Type: KindWhere, Field: field, Op: op, Value: value}
}

// OrderBy sorts results by field.
func OrderBy(field string, dir Direction) Constraint {
	if dir == "" {
		dir = Asc
	}
	return Constraint{Type: KindOrderBy, Field: field, Direction: dir}
}

// Limit caps the number of results.
func Limit(n int) Constraint {
	return Constraint{Type: KindLimit, N: n}
}

// StartAfter skips results up to and including the cursor position. Values
// line up with the query's OrderBy clauses.
func StartAfter(values ...any) Constraint {
	return Constraint{Type: KindStartAfter, Values: values}
}

// Query is a collection path with its constraints, in caller order.
type Query struct {
	Path        string       `json:"path"`
	Constraints []Constraint `json:"constraints"`
}

func New(path string, constraints ...Constraint) Query {
	return Query{Path: path, Constraints: constraints}
}

// With returns a copy of q with extra constraints prepended.
func (q Query) With(constraints ...Constraint) Query {
	cs := make([]Constraint, 0, len(constraints)+len(q.Constraints))
	cs = append(cs, constraints...)
	cs = append(cs, q.Constraints...)
	return Query{Path: q.Path, Constraints: cs}
}

var ErrInvalid = errors.New("invalid query")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports malformed constraint lists.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Path) == "" {
		return invalid("empty collection path")
	}
	var orderBys, limits, cursors int
	for i, c := range q.Constraints {
		switch c.Type {
		case KindWhere:
			if c.Field == "" {
				return invalid("constraint %d: where without field", i)
			}
			if !c.Op.valid() {
				return invalid("constraint %d: unknown operator %q", i, c.Op)
			}
			if c.Op == In {
				if _, ok := asSlice(c.Value); !ok {
					return invalid("constraint %d: %q needs a list value", i, In)
				}
			}
		case KindOrderBy:
			if c.Field == "" {
				return invalid("constraint %d: orderBy without field", i)
			}
			if c.Direction != Asc && c.Direction != Desc {
				return invalid("constraint %d: unknown direction %q", i, c.Direction)
			}
			orderBys++
		case KindLimit:
			if c.N <= 0 {
				return invalid("constraint %d: limit must be positive", i)
			}
			limits++
		case KindStartAfter:
			if len(c.Values) == 0 {
				return invalid("constraint %d: empty cursor", i)
			}
			cursors++
		default:
			return invalid("constraint %d: unknown type %q", i, c.Type)
		}
	}
	if limits > 1 || cursors > 1 {
		return invalid("at most one limit and one cursor allowed")
	}
	if c := q.Cursor(); c != nil && len(c) > orderBys {
		return invalid("cursor has %d values for %d orderBy clauses", len(c), orderBys)
	}
	return nil
}

// Wheres returns the filter clauses in order.
func (q Query) Wheres() []Constraint {
	return q.ofKind(KindWhere)
}

// OrderBys returns the sort clauses in order.
func (q Query) OrderBys() []Constraint {
	return q.ofKind(KindOrderBy)
}

// LimitN returns the limit, if one is set.
func (q Query) LimitN() (int, bool) {
	for _, c := range q.Constraints {
		if c.Type == KindLimit {
			return c.N, true
		}
	}
	return 0, false
}

// Cursor returns the StartAfter values, or nil.
func (q Query) Cursor() []any {
	for _, c := range q.Constraints {
		if c.Type == KindStartAfter {
			return c.Values
		}
	}
	return nil
}

func (q Query) ofKind(k Kind) []Constraint {
	var out []Constraint
	for _, c := range q.Constraints {
		if c.Type == k {
			out = append(out, c)
		}
	}
	return out
}

// Key is a canonical encoding of the query. Queries with equal keys select
// the same documents in the same order.
func (q Query) Key() string {
	return q.Path + "|" + ConstraintsKey(q.Constraints)
}

// ConstraintsKey canonically encodes a constraint list.
func ConstraintsKey(cs []Constraint) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.key()
	}
	return strings.Join(parts, ";")
}

// Equal compares two constraint lists by value.
func Equal(a, b []Constraint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].key() != b[i].key() {
			return false
		}
	}
	return true
}

func (c Constraint) key() string {
	n := c
	n.Value = canonical(c.Value)
	if c.Values != nil {
		n.Values = make([]any, len(c.Values))
		for i, v := range c.Values {
			n.Values[i] = canonical(v)
		}
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprintf("%#v", n)
	}
	return string(raw)
}

// canonical folds equivalent Go values onto one representation so that
// int(5), float64(5) and a UTC/local pair of identical instants encode alike.
func canonical(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	if s, ok := asSlice(v); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = canonical(e)
		}
		return out
	}
	return v
}
