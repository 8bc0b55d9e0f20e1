package docstore

import (
	"context"
	"sync"
)

// Feed carries "collection changed" signals from writers to live subscriptions.
// Signals carry no payload; subscribers re-fetch.
type Feed interface {
	Publish(ctx context.Context, path string) error
	// Listen registers fn for changes to path and returns a cancel func.
	// fn must not block.
	Listen(path string, fn func()) (cancel func())
}

// LocalFeed fans signals out within the process.
type LocalFeed struct {
	mu        sync.RWMutex
	next      int
	listeners map[string]map[int]func()
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{listeners: make(map[string]map[int]func())}
}

func (f *LocalFeed) Publish(_ context.Context, path string) error {
	f.notify(path)
	return nil
}

func (f *LocalFeed) notify(path string) {
	f.mu.RLock()
	fns := make([]func(), 0, len(f.listeners[path]))
	for _, fn := range f.listeners[path] {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (f *LocalFeed) Listen(path string, fn func()) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	if f.listeners[path] == nil {
		f.listeners[path] = make(map[int]func())
	}
	f.listeners[path][id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners[path], id)
			if len(f.listeners[path]) == 0 {
				delete(f.listeners, path)
			}
			f.mu.Unlock()
		})
	}
}

// Listeners returns the number of registered listeners for path.
func (f *LocalFeed) Listeners(path string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners[path])
}
