package audiotag

import (
	"context"
)

// Future is the pending result of an asynchronous operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed when the result is ready.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is ready or ctx is done. Giving up on the
// wait does not cancel the operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// failed returns a Future that already holds err.
func failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// submit runs fn in the background. c has already taken its place in the
// path's queue, so operations on one file run in the order they were
// submitted. Once its turn comes, c waits for a slot on the worker pool.
func submit[T any](ctx context.Context, c *call, fn func(context.Context, *call) (T, error)) *Future[T] {
	c.pooled = true
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx, c)
	}()
	return f
}

// ReadTagsAsync is ReadTags run on the worker pool.
func (t *Tagger) ReadTagsAsync(ctx context.Context, path string) *Future[TagSet] {
	return submit(ctx, t.enqueue(opRead, path), t.readTags)
}

// WriteTagsAsync is WriteTags run on the worker pool. The tag map must not
// be modified until the Future is done.
func (t *Tagger) WriteTagsAsync(ctx context.Context, path string, tags map[string][]string, opts ...SaveOption) *Future[bool] {
	if err := checkTagMap(path, tags); err != nil {
		return failed[bool](err)
	}
	return submit(ctx, t.enqueue(opWrite, path), func(ctx context.Context, c *call) (bool, error) {
		return t.writeTags(ctx, c, tags, opts...)
	})
}

// ReadAudioPropertiesAsync is ReadAudioProperties run on the worker pool.
func (t *Tagger) ReadAudioPropertiesAsync(ctx context.Context, path string) *Future[AudioProperties] {
	return submit(ctx, t.enqueue(opProps, path), t.readAudioProperties)
}
