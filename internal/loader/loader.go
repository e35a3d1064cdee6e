package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/image-loader-mcp/internal/cache"
	"github.com/ironsheep/image-loader-mcp/internal/descriptor"
	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

// DefaultDensity is the density assigned to decoded files when none is
// configured (the baseline 160 dpi bucket).
const DefaultDensity = 160

// ErrNoSource is returned for a request without a source path.
var ErrNoSource = errors.New("request has no source")

// Request identifies a transformed image: a source file plus the steps
// applied to it.
type Request struct {
	Source descriptor.File
	Steps  transform.Pipeline
}

// NewRequest stats path and builds a request for it.
func NewRequest(path string, steps transform.Pipeline) (Request, error) {
	f, err := descriptor.NewFile(path)
	if err != nil {
		return Request{}, err
	}
	return Request{Source: f, Steps: steps}, nil
}

// CanonicalString returns "<source>|<step>;<step>...".
func (r Request) CanonicalString() string {
	return r.Source.CanonicalString() + "|" + r.Steps.CanonicalString()
}

// Descriptor returns the request's descriptor.
func (r Request) Descriptor() (descriptor.Descriptor[Request], error) {
	if r.Source.Path == "" {
		return descriptor.Descriptor[Request]{}, ErrNoSource
	}
	return descriptor.New(r)
}

// Result is the outcome of Load.
//
// Raster belongs to the caller, who should Release it when done.
type Result struct {
	Key       string
	Raster    *transform.Raster
	Format    string
	FromCache bool
}

// Loader resolves requests through a cache store and a transform engine.
//
// A Loader is safe for concurrent use when its store is.
type Loader struct {
	store   cache.Store
	engine  *transform.Engine
	density int
	logger  *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithEngine sets the transform engine.
func WithEngine(e *transform.Engine) Option {
	return func(l *Loader) {
		if e != nil {
			l.engine = e
		}
	}
}

// WithDensity sets the density assigned to decoded files.
func WithDensity(d int) Option {
	return func(l *Loader) {
		if d > 0 {
			l.density = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New creates a loader backed by store. A nil store selects a fresh
// in-memory store.
func New(store cache.Store, opts ...Option) *Loader {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	l := &Loader{
		store:   store,
		engine:  transform.Default(),
		density: DefaultDensity,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the backing store.
func (l *Loader) Store() cache.Store {
	return l.store
}

// Engine returns the transform engine.
func (l *Loader) Engine() *transform.Engine {
	return l.engine
}

// Load returns the raster for req, from the store when possible.
func (l *Loader) Load(ctx context.Context, req Request) (*Result, error) {
	if err := req.Steps.Validate(); err != nil {
		return nil, err
	}
	d, err := req.Descriptor()
	if err != nil {
		return nil, err
	}
	key := d.Key()

	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup %s: %w", key, err)
	}
	if ok {
		r, err := entry.Raster()
		if err == nil {
			l.logger.Debug("cache hit", "key", key, "path", req.Source.Path)
			return &Result{Key: key, Raster: r, Format: entry.Format, FromCache: true}, nil
		}
		l.logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		if err := l.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("cache delete %s: %w", key, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, format, err := Decode(req.Source.Path, l.density)
	if err != nil {
		return nil, err
	}

	out, err := req.Steps.Apply(l.engine, src)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", req.Source.Path, err)
	}
	if out != src {
		src.Release()
	}

	entry, err = cache.EncodeEntry(out)
	if err != nil {
		out.Release()
		return nil, err
	}
	entry.Format = format
	if err := l.store.Put(ctx, key, entry); err != nil {
		out.Release()
		return nil, fmt.Errorf("cache store %s: %w", key, err)
	}

	l.logger.Debug("cache miss", "key", key, "path", req.Source.Path,
		"steps", len(req.Steps), "width", out.Width(), "height", out.Height())
	return &Result{Key: key, Raster: out, Format: format}, nil
}

// Evict removes the cached result for req and returns its key.
func (l *Loader) Evict(ctx context.Context, req Request) (string, error) {
	d, err := req.Descriptor()
	if err != nil {
		return "", err
	}
	key := d.Key()
	if err := l.store.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("cache delete %s: %w", key, err)
	}
	l.logger.Debug("evicted", "key", key, "path", req.Source.Path)
	return key, nil
}

// Contains reports whether a result for req is cached.
func (l *Loader) Contains(ctx context.Context, req Request) (bool, error) {
	d, err := req.Descriptor()
	if err != nil {
		return false, err
	}
	_, ok, err := l.store.Get(ctx, d.Key())
	return ok, err
}
