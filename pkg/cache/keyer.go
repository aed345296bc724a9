package cache

import "time"

// Default entry lifetimes. Results never go stale, so the TTLs only bound
// disk and Redis usage.
const (
	TTLResult   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer builds cache keys for search results and rendered artifacts.
type Keyer interface {
	// ResultKey returns the key of a search result for the input with the
	// given hash.
	ResultKey(inputHash string, opts ResultKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the result
	// with the given hash.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// ResultKeyOpts are the search options that change a result.
type ResultKeyOpts struct {
	MaxFrontier   int `json:"max_frontier,omitempty"`
	MaxIterations int `json:"max_iterations,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Lengths  bool   `json:"lengths,omitempty"`
	Index    int    `json:"index,omitempty"`
}

// DefaultKeyer hashes the options next to the content hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
