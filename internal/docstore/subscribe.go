package docstore

import (
	"context"
	"sync"

	"tailor-backend/internal/metrics"
	"tailor-backend/internal/query"
)

type fetchFunc func(ctx context.Context, q query.Query) ([]Document, error)

// subscribe runs a live query on top of a one-shot fetch and a change feed.
// The listener is registered before the first fetch so no write between the
// snapshot and the registration is missed. Change signals land in a one-slot
// buffer: while a re-fetch runs, any number of further signals collapse into
// one more re-fetch.
func subscribe(ctx context.Context, feed Feed, fetch fetchFunc, q query.Query, onChange func([]Document), onError func(error)) Unsubscribe {
	subCtx, cancel := context.WithCancel(ctx)
	signal := make(chan struct{}, 1)
	done := make(chan struct{})

	stopListen := feed.Listen(q.Path, func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	gauge := metrics.ActiveSubscriptions.WithLabelValues(q.Path)
	gauge.Inc()

	go func() {
		defer close(done)
		deliver := func() bool {
			docs, err := fetch(subCtx, q)
			if subCtx.Err() != nil {
				return false
			}
			if err != nil {
				onError(err)
				return false
			}
			onChange(docs)
			return true
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-subCtx.Done():
				return
			case <-signal:
				if !deliver() {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopListen()
			cancel()
			<-done
			gauge.Dec()
		})
	}
}
