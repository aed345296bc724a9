package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parsimony/pkg/cache"
	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/observability"
	"github.com/matzehuels/parsimony/pkg/search"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeResult   = "result"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete parse → search → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	in, inputHash, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Input = in
	result.InputHash = inputHash
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Leaves = in.Tree.Leaves
	result.Stats.Columns = len(in.Labels[0])

	r.Logger.Info("parsed input",
		"leaves", result.Stats.Leaves,
		"columns", result.Stats.Columns,
		"duration", result.Stats.ParseTime)

	// Stage 2: Search
	searchStart := time.Now()
	res, searchHit, err := r.SearchWithCacheInfo(ctx, in, inputHash, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	result.Search = res
	result.Stats.SearchTime = time.Since(searchStart)
	result.CacheInfo.SearchHit = searchHit

	r.Logger.Info("searched topologies",
		"score", res.Score,
		"topologies", len(res.Topologies),
		"iterations", res.Stats.Iterations,
		"cached", searchHit,
		"duration", result.Stats.SearchTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, resultHash, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.ResultHash = resultHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse reads and normalizes the input. It returns the parsed input and the
// hash of its normalized form.
func (r *Runner) Parse(ctx context.Context, opts Options) (*pio.Input, string, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, "", err
	}
	in, err := Parse(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	norm, err := Normalize(in)
	if err != nil {
		return nil, "", err
	}
	return in, cache.Hash(norm), nil
}

// SearchWithCacheInfo runs the search with caching and returns cache hit
// info. With opts.Refresh set the cache is not read, but the fresh result
// is still written.
func (r *Runner) SearchWithCacheInfo(ctx context.Context, in *pio.Input, inputHash string, opts Options) (*search.Result, bool, error) {
	if err := opts.ValidateForSearch(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()
	cacheKey := r.Keyer.ResultKey(inputHash, opts.ResultKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if res, err := pio.UnmarshalResult(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeResult)
				return res, true, nil
			}
			r.Logger.Warn("discarding unreadable cached result", "key", cacheKey)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeResult)
	}

	m, err := in.Matrix()
	if err != nil {
		return nil, false, err
	}
	res, err := search.New(m, opts.SearchOptions()).Run(ctx, in.Tree)
	if err != nil {
		return nil, false, err
	}

	if data, err := pio.MarshalResult(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLResult); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeResult, len(data))
		}
	}
	return res, false, nil
}

// Search is a convenience wrapper that calls SearchWithCacheInfo and discards the cache hit info.
func (r *Runner) Search(ctx context.Context, in *pio.Input, inputHash string, opts Options) (*search.Result, error) {
	res, _, err := r.SearchWithCacheInfo(ctx, in, inputHash, opts)
	return res, err
}

// Score evaluates the input topology without searching.
func (r *Runner) Score(ctx context.Context, opts Options) (*pio.Input, *search.Topology, error) {
	in, _, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	m, err := in.Matrix()
	if err != nil {
		return nil, nil, err
	}
	topo, err := search.New(m, search.Options{Workers: 1}).Score(in.Tree)
	if err != nil {
		return nil, nil, err
	}
	return in, topo, nil
}

// ResultHash returns the content hash of res. The text format carries no
// timings, so equal results hash equally.
func ResultHash(res *search.Result) (string, error) {
	var buf bytes.Buffer
	if err := pio.WriteResult(&buf, res); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// RenderWithCacheInfo generates artifacts with caching and returns the
// result hash and cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *search.Result, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}
	resultHash, err := ResultHash(res)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash result: %w", err)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		// json carries timings, so it is always rendered fresh.
		if format == FormatJSON {
			allCached = false
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		allCached = false
	}
	if allCached {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, resultHash, true, nil
	}

	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		data, err := RenderFormat(ctx, res, format, opts)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, "", false, err
		}
		artifacts[format] = data
		if format == FormatJSON {
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, resultHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
