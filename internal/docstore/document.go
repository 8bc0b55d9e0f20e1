// Package docstore is the remote collection client: schemaless documents grouped
// into named collections, one-shot and live queries, and single-document writes.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"tailor-backend/internal/query"
)

// Document is a stored record. Fields never contains "id".
type Document struct {
	ID     string
	Fields map[string]any
}

// Flatten returns {id, ...fields} as a new map.
func (d Document) Flatten() map[string]any {
	out := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Flatten())
}

// UserID returns the owner stamped on the document, or "".
func (d Document) UserID() string {
	s, _ := d.Fields["userId"].(string)
	return s
}

// Unsubscribe releases a live subscription. It is safe to call more than once.
// Once it returns no further callbacks are delivered. It must not be called from
// inside the subscription's own callbacks.
type Unsubscribe func()

// Client is the document store consumed by the query hook and the services.
type Client interface {
	Fetch(ctx context.Context, q query.Query) ([]Document, error)
	// Subscribe delivers an initial snapshot and then a full snapshot after every
	// change to the collection. Bursts of changes may collapse into one delivery.
	// onError is terminal for the subscription.
	Subscribe(ctx context.Context, q query.Query, onChange func([]Document), onError func(error)) Unsubscribe
	Get(ctx context.Context, path, id string) (Document, error)
	Insert(ctx context.Context, path string, fields map[string]any) (string, error)
	Update(ctx context.Context, path, id string, fields map[string]any) error
	Delete(ctx context.Context, path, id string) error
}

// reserved keys are managed by the store and stripped from caller writes.
var reserved = map[string]bool{"id": true, "createdAt": true, "updatedAt": true}

func stripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if reserved[k] {
			continue
		}
		out[k] = normalize(v)
	}
	return out
}

// normalize deep-copies v and moves times to UTC so stored values compare the same
// way regardless of the writer's zone.
func normalize(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case map[string]float64:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = e
		}
		return out
	default:
		return v
	}
}
