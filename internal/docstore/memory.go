package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tailor-backend/internal/metrics"
	"tailor-backend/internal/query"
)

// MemoryStore keeps collections in process memory. It backs tests and the
// single-instance "memory" store mode.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any

	feed  Feed
	now   func() time.Time
	newID func() string
}

type MemoryOption func(*MemoryStore)

// WithFeed replaces the default in-process feed.
func WithFeed(f Feed) MemoryOption {
	return func(s *MemoryStore) { s.feed = f }
}

// WithClock sets the store clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDs sets the id generator.
func WithIDs(next func() string) MemoryOption {
	return func(s *MemoryStore) { s.newID = next }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		feed:        NewLocalFeed(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed returns the feed writes are published to.
func (s *MemoryStore) Feed() Feed { return s.feed }

func (s *MemoryStore) Fetch(ctx context.Context, q query.Query) (docs []Document, err error) {
	defer observe("fetch", q.Path, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, newError(CodeUnavailable, "fetch", q.Path, err)
	}
	if err := q.Validate(); err != nil {
		return nil, newError(CodeInvalidArgument, "fetch", q.Path, err)
	}

	s.mu.RLock()
	all := make([]Document, 0, len(s.collections[q.Path]))
	for id, fields := range s.collections[q.Path] {
		all = append(all, Document{ID: id, Fields: normalize(fields).(map[string]any)})
	}
	s.mu.RUnlock()

	return query.Apply(all, Document.Flatten, q), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, q query.Query, onChange func([]Document), onError func(error)) Unsubscribe {
	return subscribe(ctx, s.feed, s.Fetch, q, onChange, onError)
}

func (s *MemoryStore) Get(ctx context.Context, path, id string) (doc Document, err error) {
	defer observe("get", path, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return Document{}, newError(CodeUnavailable, "get", path, err)
	}

	s.mu.RLock()
	fields, ok := s.collections[path][id]
	if ok {
		fields = normalize(fields).(map[string]any)
	}
	s.mu.RUnlock()

	if !ok {
		return Document{}, NotFound("get", path, id)
	}
	return Document{ID: id, Fields: fields}, nil
}

func (s *MemoryStore) Insert(ctx context.Context, path string, fields map[string]any) (id string, err error) {
	defer observe("insert", path, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return "", newError(CodeUnavailable, "insert", path, err)
	}
	if path == "" {
		return "", newError(CodeInvalidArgument, "insert", path, query.ErrInvalid)
	}

	stored := stripReserved(fields)
	now := s.now().UTC()
	stored["createdAt"] = now
	stored["updatedAt"] = now

	s.mu.Lock()
	id = s.newID()
	if s.collections[path] == nil {
		s.collections[path] = make(map[string]map[string]any)
	}
	s.collections[path][id] = stored
	s.mu.Unlock()

	s.publish(ctx, path)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, path, id string, fields map[string]any) (err error) {
	defer observe("update", path, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return newError(CodeUnavailable, "update", path, err)
	}

	patch := stripReserved(fields)

	s.mu.Lock()
	stored, ok := s.collections[path][id]
	if !ok {
		s.mu.Unlock()
		return NotFound("update", path, id)
	}
	for k, v := range patch {
		stored[k] = v
	}
	stored["updatedAt"] = s.now().UTC()
	s.mu.Unlock()

	s.publish(ctx, path)
	return nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (s *MemoryStore) Delete(ctx context.Context, path, id string) (err error) {
	defer observe("delete", path, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return newError(CodeUnavailable, "delete", path, err)
	}

	s.mu.Lock()
	_, existed := s.collections[path][id]
	delete(s.collections[path], id)
	s.mu.Unlock()

	if existed {
		s.publish(ctx, path)
	}
	return nil
}

// Collections lists the collection names that hold at least one document.
func (s *MemoryStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name, docs := range s.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStore) publish(ctx context.Context, path string) {
	if err := s.feed.Publish(context.WithoutCancel(ctx), path); err != nil {
		zap.L().Debug("change signal not published", zap.String("component", "docstore"), zap.String("path", path), zap.Error(err))
	}
}

func observe(op, path string, start time.Time, err *error) {
	metrics.StoreOperations.WithLabelValues(op, path, codeLabel(*err)).Inc()
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
