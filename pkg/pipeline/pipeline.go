// Package pipeline runs the parse, search and render stages shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read an adjacency or Newick input into a topology and its labels
//  2. Search: Run the large-parsimony search from that topology
//  3. Render: Write the result in the requested formats
//
// Search results and artifacts are cached by content hash, so re-running an
// identical input skips the search.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "tree.txt",
//	    Formats: []string{"txt", "newick"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	txt := result.Artifacts["txt"]
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parsimony/pkg/cache"
	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is the default output format.
const DefaultFormat = FormatTxt

// DefaultWorkers is the default number of scoring goroutines.
var DefaultWorkers = runtime.NumCPU()

// Format constants for output formats.
const (
	FormatTxt    = "txt"
	FormatJSON   = "json"
	FormatNewick = "newick"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTxt:    true,
	FormatJSON:   true,
	FormatNewick: true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
}

// Input syntaxes.
const (
	SyntaxAuto      = ""
	SyntaxAdjacency = "adjacency"
	SyntaxNewick    = "newick"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Input  string `json:"input,omitempty"`  // path of the input file
	Source string `json:"source,omitempty"` // inline input, used when Input is empty
	Syntax string `json:"syntax,omitempty"` // adjacency, newick or empty to detect

	// Search options
	Workers       int  `json:"workers,omitempty"`
	MaxFrontier   int  `json:"max_frontier,omitempty"`
	MaxIterations int  `json:"max_iterations,omitempty"`
	Refresh       bool `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // internal labels and edge distances in diagrams
	Lengths  bool     `json:"lengths,omitempty"`  // branch lengths in Newick output
	Index    int      `json:"index,omitempty"`    // topology drawn by svg and png

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the parsed problem.
	Input *pio.Input

	// InputHash is the content hash of the normalized input.
	InputHash string

	// Search is the search result.
	Search *search.Result

	// ResultHash is the content hash of the JSON-encoded search result.
	ResultHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Leaves     int
	Columns    int
	ParseTime  time.Duration
	SearchTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SearchHit bool // Whether the search result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: txt, json, newick, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSyntax checks that an input syntax is valid.
func ValidateSyntax(syntax string) error {
	switch syntax {
	case SyntaxAuto, SyntaxAdjacency, SyntaxNewick:
		return nil
	}
	return fmt.Errorf("invalid syntax: %q (must be one of: adjacency, newick)", syntax)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForSearch(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Input == "" && o.Source == "" {
		return fmt.Errorf("input or source is required")
	}
	if err := ValidateSyntax(o.Syntax); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForSearch checks the search limits and applies defaults.
func (o *Options) ValidateForSearch() error {
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", o.Workers)
	}
	if o.MaxFrontier < 0 {
		return fmt.Errorf("max_frontier must be >= 0, got %d", o.MaxFrontier)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be >= 0, got %d", o.MaxIterations)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Index < 0 {
		return fmt.Errorf("index must be >= 0, got %d", o.Index)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SearchOptions returns the options for the search stage.
func (o *Options) SearchOptions() search.Options {
	return search.Options{
		Workers:       o.Workers,
		MaxFrontier:   o.MaxFrontier,
		MaxIterations: o.MaxIterations,
		Logger:        o.Logger,
	}
}

// ResultKeyOpts returns cache key options for search results.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		MaxFrontier:   o.MaxFrontier,
		MaxIterations: o.MaxIterations,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Only
// the options that affect format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT, FormatSVG, FormatPNG:
		k.Detailed = o.Detailed
	case FormatNewick:
		k.Lengths = o.Lengths
	}
	if format == FormatSVG || format == FormatPNG {
		k.Index = o.Index
	}
	return k
}
