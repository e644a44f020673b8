package audiotag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/simonhull/audiotag/internal/flac"
	"github.com/simonhull/audiotag/internal/logging"
	"github.com/simonhull/audiotag/internal/m4a"
	"github.com/simonhull/audiotag/internal/metrics"
	"github.com/simonhull/audiotag/internal/mp3"
	"github.com/simonhull/audiotag/internal/ogg"
	"github.com/simonhull/audiotag/internal/pathlock"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// Operation names used in errors, logs and metrics.
const (
	opRead  = "read"
	opWrite = "write"
	opProps = "props"
	opDump  = "dump"
)

// Tagger reads and writes tags. Operations on the same file are serialized
// in arrival order; operations on different files run in parallel.
//
// A Tagger is safe for concurrent use. Build one with New and share it.
type Tagger struct {
	registry *registry.Registry
	locks    *pathlock.Table
	logger   *slog.Logger
	metrics  *metrics.Metrics
	sem      *semaphore.Weighted
	workers  int
	save     saveOptions
}

// New creates a Tagger.
//
// It fails when the configuration does not validate or the metrics cannot
// be registered.
func New(opts ...Option) (*Tagger, error) {
	s := &settings{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.lockTimeout > 0 {
		s.cfg.Lock.Timeout = s.lockTimeout
	}
	if s.workers > 0 {
		s.cfg.Workers = s.workers
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if s.registerer != nil {
		var err error
		if m, err = metrics.New(s.registerer); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	logger := s.logger
	if logger == nil {
		logger = logging.Discard()
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Tagger{
		registry: buildRegistry(s.cfg, s.plugins),
		locks:    pathlock.New(s.cfg.Lock.Timeout, m),
		logger:   logger,
		metrics:  m,
		sem:      semaphore.NewWeighted(int64(workers)),
		workers:  workers,
		save:     defaultSaveOptions(s.cfg),
	}, nil
}

// buildRegistry registers custom plugins ahead of the built-in ones.
func buildRegistry(cfg *Config, custom []Plugin) *registry.Registry {
	enc, ok := mp3.ParseTextEncoding(cfg.ID3v2.Encoding)
	if !ok {
		enc = mp3.EncodingUTF16
	}
	unknown := mp3.KeepUnknownKeys
	if cfg.ID3v2.UnknownKeys == "drop" {
		unknown = mp3.DropUnknownKeys
	}

	plugins := append([]Plugin{}, custom...)
	plugins = append(plugins,
		mp3.NewID3v2(mp3.ID3v2Options{
			Version:     byte(cfg.ID3v2.Version),
			Encoding:    enc,
			UnknownKeys: unknown,
			Padding:     cfg.ID3v2.Padding,
		}),
		flac.New(flac.Options{Vendor: cfg.FLAC.Vendor, Padding: cfg.FLAC.Padding}),
		ogg.New(),
		m4a.New(),
		mp3.NewID3v1(),
	)
	return registry.New(plugins...)
}

// ReadTags returns the tags of the file at path.
func (t *Tagger) ReadTags(ctx context.Context, path string) (TagSet, error) {
	return t.readTags(ctx, t.enqueue(opRead, path))
}

func (t *Tagger) readTags(ctx context.Context, c *call) (TagSet, error) {
	var tags TagSet
	err := t.finish(ctx, c, func(abs string, log *slog.Logger) error {
		f, err := t.load(abs)
		if err != nil {
			return err
		}
		tags = f.decoded.Tags
		log.Debug("read tags", "format", f.plugin.Name(), "keys", tags.Len())
		return nil
	})
	return tags, err
}

// ReadAudioProperties returns the stream properties of the file at path.
// It fails with ErrMalformedHeader when no stream header can be found.
func (t *Tagger) ReadAudioProperties(ctx context.Context, path string) (AudioProperties, error) {
	return t.readAudioProperties(ctx, t.enqueue(opProps, path))
}

func (t *Tagger) readAudioProperties(ctx context.Context, c *call) (AudioProperties, error) {
	var props AudioProperties
	err := t.finish(ctx, c, func(abs string, log *slog.Logger) error {
		f, err := t.load(abs)
		if err != nil {
			return err
		}
		if f.decoded.Audio == nil {
			return &Error{Kind: KindMalformedHeader, Reason: "no audio stream header found"}
		}
		props = *f.decoded.Audio
		log.Debug("read audio properties", "format", f.plugin.Name(), "props", props.String())
		return nil
	})
	return props, err
}

// Dump lists the raw elements (frames, blocks or fields) of the file's tag
// block, for diagnostics. It returns the name of the plugin that handled
// the file; plugins that cannot list return no elements.
func (t *Tagger) Dump(ctx context.Context, path string) (string, []Element, error) {
	var name string
	var elems []Element
	err := t.finish(ctx, t.enqueue(opDump, path), func(abs string, log *slog.Logger) error {
		data, err := readAudioFile(abs)
		if err != nil {
			return err
		}
		p := t.registry.Identify(data, abs)
		if p == nil {
			return &Error{Kind: KindUnsupportedFormat, Reason: "no plugin recognises the file"}
		}
		name = p.Name()
		if l, ok := p.(registry.Lister); ok {
			elems, err = l.List(data)
		}
		return err
	})
	return name, elems, err
}

// ReadTagsMany reads the tags of several files concurrently, bounded by
// the worker count. Results are in the order of paths. The first failure
// cancels the remaining reads and is returned.
func (t *Tagger) ReadTagsMany(ctx context.Context, paths ...string) ([]TagSet, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	results := make([]TagSet, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tags, err := t.ReadTags(ctx, path)
			if err != nil {
				return err
			}
			results[i] = tags
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// call is one operation with its place in the path's lock queue.
type call struct {
	op     string
	path   string
	abs    string
	ticket *pathlock.Ticket
	err    error // set when the call failed before it could be queued
	start  time.Time
	log    *slog.Logger
	pooled bool // runs on the worker pool once its turn comes
}

// enqueue resolves path and takes its place in the path's queue. It never
// blocks, so calls are ordered by when enqueue ran, not by when their
// goroutines get scheduled.
func (t *Tagger) enqueue(op, path string) *call {
	c := &call{op: op, path: path, start: time.Now(), log: t.logger.With("op", op, "id", uuid.NewString())}
	if path == "" {
		c.err = &Error{Kind: KindNotEnoughArguments, Op: op, Reason: "a file path is required"}
		return c
	}
	abs, err := canonicalPath(path)
	if err != nil {
		c.err = types.WithPath(err, op, path)
		return c
	}
	c.abs = abs
	c.log = c.log.With("path", abs)
	c.ticket = t.locks.Enqueue(abs)
	return c
}

// finish waits for c's turn, runs fn while holding the path's lock, and
// records the outcome. Every error leaving finish carries op and the path.
func (t *Tagger) finish(ctx context.Context, c *call, fn func(abs string, log *slog.Logger) error) (err error) {
	defer func() {
		t.metrics.ObserveOperation(c.op, err, time.Since(c.start))
	}()
	if c.err != nil {
		return c.err
	}

	h, err := c.ticket.Wait(ctx)
	if err != nil {
		if pathlock.IsTimeout(err) {
			c.log.Warn("path lock not acquired", "timeout", t.locks.Timeout(), "err", err)
		}
		return types.WithPath(err, c.op, c.abs)
	}
	defer h.Release()

	if c.pooled {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return types.WithPath(&Error{Kind: KindLockTimeout, Reason: "no worker available", Err: err}, c.op, c.abs)
		}
		defer t.sem.Release(1)
	}

	if err := fn(c.abs, c.log); err != nil {
		c.log.Debug("operation failed", "err", err, "duration", time.Since(c.start))
		return types.WithPath(err, c.op, c.abs)
	}
	c.log.Debug("operation done", "duration", time.Since(c.start))
	return nil
}

// canonicalPath makes relative, absolute and symlinked references to one
// file share a lock key. Symlinks are resolved when possible.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// loaded is a decoded file.
type loaded struct {
	data    []byte
	plugin  Plugin
	decoded *Decoded
}

// load reads and decodes the file at path.
func (t *Tagger) load(path string) (*loaded, error) {
	data, err := readAudioFile(path)
	if err != nil {
		return nil, err
	}
	p := t.registry.Identify(data, path)
	if p == nil {
		return nil, &Error{Kind: KindUnsupportedFormat, Reason: "no plugin recognises the file"}
	}
	d, err := p.Decode(data)
	if err != nil {
		return nil, err
	}
	return &loaded{data: data, plugin: p, decoded: d}, nil
}

// readAudioFile reads a regular file. A missing path or a directory is an
// IOError.
func readAudioFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Kind: KindIOError, Reason: "audio file not found", Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindIOError, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &Error{Kind: KindIOError, Reason: "audio file not found: not a regular file"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindIOError, Err: err}
	}
	return data, nil
}
