// Package livequery turns a declarative {path, constraints, listen} description
// into a reactive {data, loading, error} result. A Hook owns at most one
// subscription at a time and re-runs only when its inputs change by value.
package livequery

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/models"
	"tailor-backend/internal/query"
)

// Config describes what a Hook reads.
type Config struct {
	Path        string             `json:"path"`
	Constraints []query.Constraint `json:"constraints"`
	Listen      bool               `json:"listen"`
	RequireAuth bool               `json:"requireAuth"`
}

func (c Config) equal(o Config) bool {
	return c.Path == o.Path &&
		c.Listen == o.Listen &&
		c.RequireAuth == o.RequireAuth &&
		query.Equal(c.Constraints, o.Constraints)
}

// Result is what a Hook renders. Data is nil while loading, for anonymous
// callers and on error; it is a non-nil (possibly empty) slice otherwise.
type Result[T any] struct {
	Data    []T   `json:"data"`
	Loading bool  `json:"loading"`
	Err     error `json:"-"`
}

// Hook runs one query configuration at a time against a docstore.Client.
// Render callbacks are serialized. Update and Close must not be called from
// inside the render callback.
type Hook[T any] struct {
	client docstore.Client
	render func(Result[T])
	decode func(docstore.Document) (T, error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	renderMu sync.Mutex

	mu      sync.Mutex
	started bool
	closed  bool
	gen     uint64
	cfg     Config
	session auth.Session
	unsub   docstore.Unsubscribe
	state   Result[T]
}

type Option[T any] func(*Hook[T])

// WithDecoder replaces the default JSON decoding of {id, ...fields} into T.
func WithDecoder[T any](decode func(docstore.Document) (T, error)) Option[T] {
	return func(h *Hook[T]) { h.decode = decode }
}

// New creates an idle hook. Nothing is read until the first Update.
func New[T any](ctx context.Context, client docstore.Client, render func(Result[T]), opts ...Option[T]) *Hook[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Hook[T]{
		client: client,
		render: render,
		decode: func(d docstore.Document) (T, error) { return models.Decode[T](d.Flatten()) },
		ctx:    ctx,
		cancel: cancel,
		state:  Result[T]{Loading: true},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.render == nil {
		h.render = func(Result[T]) {}
	}
	return h
}

// Update applies a configuration and session. When both are equal by value to
// the previous call nothing happens; otherwise the previous subscription is
// released before the new read starts.
func (h *Hook[T]) Update(cfg Config, session auth.Session) {
	h.mu.Lock()
	if h.closed || (h.started && h.cfg.equal(cfg) && h.session.SameIdentity(session)) {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.cfg = Config{
		Path:        cfg.Path,
		Constraints: slices.Clone(cfg.Constraints),
		Listen:      cfg.Listen,
		RequireAuth: cfg.RequireAuth,
	}
	h.session = session
	h.gen++
	gen := h.gen
	old := h.unsub
	h.unsub = nil
	h.mu.Unlock()

	if old != nil {
		old()
	}

	switch {
	case session.State == auth.StateLoading:
		h.publish(gen, Result[T]{Loading: true})
		return
	case cfg.RequireAuth && !session.IsAuthenticated():
		h.publish(gen, Result[T]{})
		return
	}

	q := query.New(cfg.Path, cfg.Constraints...)
	h.publish(gen, Result[T]{Loading: true})

	if !cfg.Listen {
		// In-flight fetches are not cancelled by later updates; their results
		// are dropped by the generation check instead.
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			docs, err := h.client.Fetch(h.ctx, q)
			h.deliver(gen, q, docs, err)
		}()
		return
	}

	unsub := h.client.Subscribe(h.ctx, q,
		func(docs []docstore.Document) { h.deliver(gen, q, docs, nil) },
		func(err error) { h.deliver(gen, q, nil, err) },
	)

	h.mu.Lock()
	if h.closed || h.gen != gen {
		h.mu.Unlock()
		unsub()
		return
	}
	h.unsub = unsub
	h.mu.Unlock()
}

// State returns the most recently rendered result.
func (h *Hook[T]) State() Result[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close releases the subscription. No render happens after Close returns.
func (h *Hook[T]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.gen++
	old := h.unsub
	h.unsub = nil
	h.mu.Unlock()

	if old != nil {
		old()
	}
	h.cancel()
	h.wg.Wait()

	// Wait out a render that passed the generation check before Close.
	h.renderMu.Lock()
	h.renderMu.Unlock()
}

func (h *Hook[T]) deliver(gen uint64, q query.Query, docs []docstore.Document, err error) {
	if err != nil {
		if docstore.IsBenign(err) {
			zap.L().Debug("benign read failure rendered as empty",
				zap.String("component", "livequery"), zap.String("path", q.Path), zap.Error(err))
			h.publish(gen, Result[T]{Data: []T{}})
			return
		}
		h.publish(gen, Result[T]{Err: err})
		return
	}

	data := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := h.decode(d)
		if err != nil {
			h.publish(gen, Result[T]{Err: err})
			return
		}
		data = append(data, v)
	}
	h.publish(gen, Result[T]{Data: data})
}

// publish stores and renders r unless gen has been superseded.
func (h *Hook[T]) publish(gen uint64, r Result[T]) {
	h.renderMu.Lock()
	defer h.renderMu.Unlock()

	h.mu.Lock()
	if h.closed || h.gen != gen {
		h.mu.Unlock()
		return
	}
	h.state = r
	h.mu.Unlock()

	h.render(r)
}
