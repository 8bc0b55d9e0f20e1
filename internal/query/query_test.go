package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(m map[string]any) map[string]any { return m }

func TestEqual_ComparesByValue(t *testing.T) {
	build := func() []Constraint {
		return []Constraint{
			Where("userId", Eq, "u1"),
			Where("materialCost", Gt, 10),
			OrderBy("createdAt", Desc),
			Limit(20),
		}
	}
	a, b := build(), build()
	assert.True(t, Equal(a, b), "fresh slices with the same clauses must be equal")
	assert.Equal(t, ConstraintsKey(a), ConstraintsKey(b))

	t.Run("int and float values are equivalent", func(t *testing.T) {
		assert.True(t, Equal(
			[]Constraint{Where("amount", Ge, 5)},
			[]Constraint{Where("amount", Ge, 5.0)},
		))
	})

	t.Run("same instant in different zones is equivalent", func(t *testing.T) {
		utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		local := utc.In(time.FixedZone("IST", 5*3600+1800))
		assert.True(t, Equal(
			[]Constraint{Where("createdAt", Gt, utc)},
			[]Constraint{Where("createdAt", Gt, local)},
		))
	})

	t.Run("order matters", func(t *testing.T) {
		assert.False(t, Equal(
			[]Constraint{Where("a", Eq, 1), Where("b", Eq, 2)},
			[]Constraint{Where("b", Eq, 2), Where("a", Eq, 1)},
		))
	})

	t.Run("different values differ", func(t *testing.T) {
		assert.False(t, Equal([]Constraint{Limit(10)}, []Constraint{Limit(11)}))
		assert.False(t, Equal([]Constraint{Limit(10)}, nil))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"valid", New("orders", Where("status", Eq, "New"), OrderBy("createdAt", Desc), StartAfter("2026-01-01T00:00:00Z"), Limit(5)), false},
		{"empty path", New(" "), true},
		{"unknown op", New("orders", Where("status", Op("~"), "x")), true},
		{"in needs list", New("orders", Where("status", In, "New")), true},
		{"in with list", New("orders", Where("status", In, []string{"New", "Completed"})), false},
		{"zero limit", New("orders", Limit(0)), true},
		{"cursor without orderBy", New("orders", StartAfter(1)), true},
		{"two limits", New("orders", Limit(1), Limit(2)), true},
		{"missing field", New("orders", OrderBy("", Asc)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []map[string]any{
		{"id": "a", "userId": "u1", "status": "New", "amount": 10.0, "createdAt": t0},
		{"id": "b", "userId": "u1", "status": "Completed", "amount": 30.0, "createdAt": t0.Add(time.Hour)},
		{"id": "c", "userId": "u2", "status": "New", "amount": 20.0, "createdAt": t0.Add(2 * time.Hour)},
		{"id": "d", "userId": "u1", "status": "In Progress", "amount": 20.0, "createdAt": t0.Add(3 * time.Hour)},
		{"id": "e", "userId": "u1", "amount": 5.0},
	}
	ids := func(out []map[string]any) []string {
		s := make([]string, len(out))
		for i, d := range out {
			s[i] = d["id"].(string)
		}
		return s
	}

	t.Run("filter and order", func(t *testing.T) {
		q := New("orders", Where("userId", Eq, "u1"), OrderBy("amount", Desc))
		assert.Equal(t, []string{"b", "d", "a", "e"}, ids(Apply(docs, flat, q)))
	})

	t.Run("missing field never matches", func(t *testing.T) {
		q := New("orders", Where("status", Ne, "Completed"))
		assert.Equal(t, []string{"a", "c", "d"}, ids(Apply(docs, flat, q)))
	})

	t.Run("in", func(t *testing.T) {
		q := New("orders", Where("status", In, []any{"New", "In Progress"}), OrderBy("createdAt", Asc))
		assert.Equal(t, []string{"a", "c", "d"}, ids(Apply(docs, flat, q)))
	})

	t.Run("time compared against RFC3339 string", func(t *testing.T) {
		q := New("orders", Where("createdAt", Ge, t0.Add(2*time.Hour).Format(time.RFC3339)))
		assert.Equal(t, []string{"c", "d"}, ids(Apply(docs, flat, q)))
	})

	t.Run("cursor then limit", func(t *testing.T) {
		q := New("orders", Where("userId", Eq, "u1"), OrderBy("amount", Asc), StartAfter(10), Limit(1))
		assert.Equal(t, []string{"d"}, ids(Apply(docs, flat, q)))
	})

	t.Run("ties broken by id", func(t *testing.T) {
		q := New("orders", Where("amount", Eq, 20))
		assert.Equal(t, []string{"c", "d"}, ids(Apply(docs, flat, q)))
	})

	t.Run("input untouched", func(t *testing.T) {
		before := ids(docs)
		Apply(docs, flat, New("orders", OrderBy("amount", Desc)))
		assert.Equal(t, before, ids(docs))
	})
}

func TestLookup_DottedPath(t *testing.T) {
	doc := map[string]any{"values": map[string]any{"chest": 40.0}}
	v, ok := Lookup(doc, "values.chest")
	require.True(t, ok)
	assert.Equal(t, 40.0, v)

	_, ok = Lookup(doc, "values.waist")
	assert.False(t, ok)
}

func TestConstraint_JSONRoundTrip(t *testing.T) {
	in := []Constraint{Where("status", Eq, "New"), OrderBy("createdAt", Desc), Limit(3)}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out []Constraint
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, Equal(in, out))
}
