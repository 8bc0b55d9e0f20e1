package query

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Lookup resolves a possibly dotted field path ("values.chest") in a
// flattened document.
func Lookup(fields map[string]any, path string) (any, bool) {
	v, ok := fields[path]
	if ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Matches reports whether a flattened document satisfies every Where clause.
// A document missing the field never matches, whatever the operator.
func (q Query) Matches(fields map[string]any) bool {
	for _, c := range q.Wheres() {
		v, ok := Lookup(fields, c.Field)
		if !ok || !matchOne(v, c.Op, c.Value) {
			return false
		}
	}
	return true
}

func matchOne(v any, op Op, want any) bool {
	if op == In {
		list, _ := asSlice(want)
		for _, w := range list {
			if cmp, ok := Compare(v, w); ok && cmp == 0 {
				return true
			}
		}
		return false
	}
	cmp, ok := Compare(v, want)
	if !ok {
		return op == Ne && v != nil
	}
	switch op {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	return false
}

// Apply filters, sorts, pages and limits flattened documents per q. fields
// maps an element to its flattened form; ties are broken by "id".
func Apply[D any](docs []D, fields func(D) map[string]any, q Query) []D {
	out := make([]D, 0, len(docs))
	for _, d := range docs {
		if q.Matches(fields(d)) {
			out = append(out, d)
		}
	}

	orders := q.OrderBys()
	sort.SliceStable(out, func(i, j int) bool {
		return less(fields(out[i]), fields(out[j]), orders)
	})

	if cursor := q.Cursor(); cursor != nil {
		start := len(out)
		for i, d := range out {
			if afterCursor(fields(d), orders, cursor) {
				start = i
				break
			}
		}
		out = out[start:]
	}

	if n, ok := q.LimitN(); ok && n < len(out) {
		out = out[:n]
	}
	return out
}

func less(a, b map[string]any, orders []Constraint) bool {
	for _, o := range orders {
		av, _ := Lookup(a, o.Field)
		bv, _ := Lookup(b, o.Field)
		c := sortCompare(av, bv)
		if o.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return sortCompare(a["id"], b["id"]) < 0
}

func afterCursor(fields map[string]any, orders []Constraint, cursor []any) bool {
	for i, cv := range cursor {
		if i >= len(orders) {
			break
		}
		o := orders[i]
		v, _ := Lookup(fields, o.Field)
		c := sortCompare(v, cv)
		if o.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c > 0
		}
	}
	return false
}

// Compare orders two scalar values of compatible kinds. Numbers compare
// numerically across Go types; times compare with RFC 3339 strings. ok is
// false when the kinds are incomparable.
func Compare(a, b any) (int, bool) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return cmpOrdered(af, bf), true
	}
	if at, ok := toTime(a, b); ok {
		bt, ok := toTime(b, a)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// sortCompare is a total order: values of different kinds order by kind.
func sortCompare(a, b any) int {
	if c, ok := Compare(a, b); ok {
		return c
	}
	return cmpOrdered(rank(a), rank(b))
}

func rank(v any) int {
	v = deref(v)
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case time.Time:
		return 3
	case string:
		return 4
	}
	if _, ok := toFloat(v); ok {
		return 2
	}
	return 5
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func deref(v any) any {
	if t, ok := v.(*time.Time); ok {
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toTime converts v to a time when v is a time, or when v is an RFC 3339
// string being compared against a time.
func toTime(v, other any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if _, isTime := other.(time.Time); !isTime {
			return time.Time{}, false
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsList returns the elements of a slice or array value.
func AsList(v any) ([]any, bool) {
	return asSlice(v)
}
