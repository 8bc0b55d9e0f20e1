package docstore

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const changeChannelPrefix = "docstore:changes:"

// RedisFeed publishes change signals over Redis Pub/Sub so that every instance
// sharing the database sees writes made by the others. Listeners are kept in a
// LocalFeed; one pattern subscription per process feeds it.
type RedisFeed struct {
	client *redis.Client
	local  *LocalFeed

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client, local: NewLocalFeed()}
}

// Start opens the pattern subscription and dispatches messages until ctx is done
// or Close is called.
func (f *RedisFeed) Start(ctx context.Context) error {
	ps := f.client.PSubscribe(ctx, changeChannelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return newError(CodeUnavailable, "listen", "", err)
	}

	f.mu.Lock()
	f.pubsub = ps
	f.done = make(chan struct{})
	done := f.done
	f.mu.Unlock()

	go func() {
		defer close(done)
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				f.local.notify(strings.TrimPrefix(msg.Channel, changeChannelPrefix))
			}
		}
	}()

	zap.L().Info("change feed subscribed", zap.String("component", "docstore"), zap.String("pattern", changeChannelPrefix+"*"))
	return nil
}

// Close stops the dispatch goroutine.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	ps, done := f.pubsub, f.done
	f.pubsub = nil
	f.mu.Unlock()

	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}

// Publish sends the signal through Redis. Local listeners receive it back from the
// subscription like any other instance. When Redis is unreachable the signal is
// delivered locally only.
func (f *RedisFeed) Publish(ctx context.Context, path string) error {
	if err := f.client.Publish(ctx, changeChannelPrefix+path, "1").Err(); err != nil {
		zap.L().Warn("change publish failed, notifying locally",
			zap.String("component", "docstore"), zap.String("path", path), zap.Error(err))
		f.local.notify(path)
		return newError(CodeUnavailable, "publish", path, err)
	}
	return nil
}

func (f *RedisFeed) Listen(path string, fn func()) func() {
	return f.local.Listen(path, fn)
}
