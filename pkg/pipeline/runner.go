package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/safetree/pkg/cache"
	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/render/nodelink"
	"github.com/matzehuels/safetree/pkg/safetree"
)

// Runner executes pipeline steps with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-namespace cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// StringifyResult is the output of Runner.Stringify.
type StringifyResult struct {
	Line     string          `json:"-"`
	Stats    safetree.Stats  `json:"stats"`
	CacheHit bool            `json:"cache_hit"`
	Duration time.Duration   `json:"duration"`
	Tree     json.RawMessage `json:"tree"`
}

// LocateResult is the output of Runner.Locate.
type LocateResult struct {
	Needle   string   `json:"needle"`
	Paths    []string `json:"paths"`
	CacheHit bool     `json:"cache_hit"`
}

// GraphResult is the output of Runner.Graph.
type GraphResult struct {
	Format   string
	Data     []byte
	CacheHit bool
}

// Stringify decodes doc and renders it as one line of safe tree JSON.
func (r *Runner) Stringify(ctx context.Context, doc []byte, opts Options) (*StringifyResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	key := r.Keyer.RenderKey(docHash(doc, opts), cache.RenderKeyOpts{MaxDepth: opts.MaxDepth, MaxNodes: opts.MaxNodes})

	if line, ok := r.lookup(ctx, key, opts); ok {
		return &StringifyResult{Line: string(line), Tree: line, CacheHit: true}, nil
	}

	start := time.Now()
	res, err := r.build(doc, opts.MaxDepth, opts)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(res.Tree)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode safe tree")
	}
	out := &StringifyResult{Line: string(data), Tree: data, Stats: res.Stats, Duration: time.Since(start)}

	r.store(ctx, key, data, cache.TTLRender)
	r.Logger.Debug("stringified document",
		"bytes", len(doc),
		"nodes", res.Stats.Nodes,
		"refs", res.Stats.References,
		"duration", out.Duration)
	return out, nil
}

// Locate decodes doc and returns the paths of scalars containing
// opts.Needle, searching to safetree.LocateMaxDepth.
func (r *Runner) Locate(ctx context.Context, doc []byte, opts Options) (*LocateResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := errors.ValidateNeedle(opts.Needle); err != nil {
		return nil, err
	}
	key := r.Keyer.LocateKey(docHash(doc, opts), cache.LocateKeyOpts{Needle: opts.Needle, MaxNodes: opts.MaxNodes})

	if data, ok := r.lookup(ctx, key, opts); ok {
		var paths []string
		if err := json.Unmarshal(data, &paths); err == nil {
			return &LocateResult{Needle: opts.Needle, Paths: paths, CacheHit: true}, nil
		}
	}

	value, err := io.DecodeBytes(doc, opts.Format)
	if err != nil {
		return nil, err
	}
	paths, err := safetree.Locate(value, opts.Needle,
		safetree.WithMaxNodes(opts.MaxNodes), safetree.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(paths); err == nil {
		r.store(ctx, key, data, cache.TTLLocate)
	}
	r.Logger.Debug("located needle", "matches", len(paths))
	return &LocateResult{Needle: opts.Needle, Paths: paths}, nil
}

// Graph decodes doc, builds its safe tree and draws it as a node-link
// diagram in opts.GraphFormat.
func (r *Runner) Graph(ctx context.Context, doc []byte, opts Options) (*GraphResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	key := r.Keyer.GraphKey(docHash(doc, opts), cache.GraphKeyOpts{MaxDepth: opts.MaxDepth, MaxNodes: opts.MaxNodes, Format: graphVariant(opts)})

	if data, ok := r.lookup(ctx, key, opts); ok {
		return &GraphResult{Format: opts.GraphFormat, Data: data, CacheHit: true}, nil
	}

	res, err := r.build(doc, opts.MaxDepth, opts)
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(res.Tree, nodelink.Options{Detailed: opts.Detailed})

	var data []byte
	switch opts.GraphFormat {
	case GraphDOT:
		data = []byte(dot)
	case GraphSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case GraphPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case GraphPNG:
		data, err = nodelink.RenderPNG(ctx, dot, 2.0)
	}
	if err != nil {
		return nil, err
	}

	r.store(ctx, key, data, cache.TTLGraph)
	r.Logger.Debug("rendered graph", "format", opts.GraphFormat, "bytes", len(data))
	return &GraphResult{Format: opts.GraphFormat, Data: data}, nil
}

func (r *Runner) build(doc []byte, maxDepth int, opts Options) (*safetree.Result, error) {
	value, err := io.DecodeBytes(doc, opts.Format)
	if err != nil {
		return nil, err
	}
	return safetree.Build(value, maxDepth,
		safetree.WithMaxNodes(opts.MaxNodes), safetree.WithLogger(r.Logger))
}

// lookup returns a cached entry. Backend errors count as misses; the
// pipeline never fails because the cache is down.
func (r *Runner) lookup(ctx context.Context, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache store failed", "error", err)
	}
}

// docHash keys a document by its bytes and syntax; the same bytes parse to
// different values under different formats.
func docHash(doc []byte, opts Options) string {
	return cache.Hash(append([]byte(string(opts.Format)+"\x00"), doc...))
}

func graphVariant(opts Options) string {
	if opts.Detailed {
		return opts.GraphFormat + "+detailed"
	}
	return opts.GraphFormat
}
