package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"decor-shop/internal/events"
)

// memoryCache is an in-process cache.Cache used to observe caching behaviour.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gen     int64
	failAll bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

var errCacheDown = errors.New("cache unavailable")

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return false, errCacheDown
	}
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memoryCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return 0, errCacheDown
	}
	return c.gen, nil
}

func (c *memoryCache) BumpGeneration(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	c.gen++
	return nil
}

func (c *memoryCache) Close() error { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type recordingPublisher struct {
	events  []events.Event
	ctxErrs []error
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingRecorder struct {
	calls map[string][]bool
}

func (r *recordingRecorder) RecordOrderOperation(operation string, success bool) {
	if r.calls == nil {
		r.calls = map[string][]bool{}
	}
	r.calls[operation] = append(r.calls[operation], success)
}
