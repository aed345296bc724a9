package search

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/observability"
	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// Options configures a search.
type Options struct {
	// Workers is the number of scoring goroutines. Zero means one per CPU;
	// one scores sequentially on the calling goroutine.
	Workers int
	// MaxFrontier fails the search with FRONTIER_EXHAUSTED when a frontier
	// would exceed this many topologies. Zero means unbounded.
	MaxFrontier int
	// MaxIterations stops the search after this many expansions and marks
	// the result truncated. Zero means unbounded.
	MaxIterations int
	// Logger receives per-iteration debug output. Nil discards it.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Topology is a scored tree with the label of every node. It is owned by
// the frontier holding it.
type Topology struct {
	Tree   *tree.Unrooted
	Labels []string // Labels[v] for nodes 0..N-1
	Score  int

	key string
}

// Key returns the canonical topology key of the tree.
func (t *Topology) Key() string {
	if t.key == "" {
		t.key = t.Tree.Key()
	}
	return t.key
}

// Stats summarizes a search.
type Stats struct {
	Iterations int           // frontier expansions, including the confirming one
	Candidates int           // NNI neighbors scored
	History    []int         // best score after init and after every improving iteration
	Duration   time.Duration // wall time
}

// Result is the outcome of a search.
type Result struct {
	Score      int
	Topologies []*Topology // distinct co-optimal topologies, in discovery order
	Leaves     int
	Columns    int
	Stats      Stats
	// Truncated is set when MaxIterations stopped the search before it
	// confirmed a local optimum.
	Truncated bool
}

// Searcher runs large parsimony searches over one character matrix.
type Searcher struct {
	matrix *parsimony.Matrix
	opts   Options
}

// New returns a Searcher for m.
func New(m *parsimony.Matrix, opts Options) *Searcher {
	opts.setDefaults()
	return &Searcher{matrix: m, opts: opts}
}

// Score evaluates a single topology without searching.
func (s *Searcher) Score(t *tree.Unrooted) (*Topology, error) {
	return score(parsimony.NewSolver(), t, s.matrix)
}

func score(solver *parsimony.Solver, t *tree.Unrooted, m *parsimony.Matrix) (*Topology, error) {
	total, flat, err := solver.Evaluate(t, m, nil)
	if err != nil {
		return nil, err
	}
	return &Topology{
		Tree:   t.Clone(),
		Labels: parsimony.Labels(flat, m.Columns),
		Score:  total,
	}, nil
}

// Run searches from initial until no NNI neighbor of the frontier improves
// on its score. Structural problems with initial are returned before any
// search work starts. Cancelling ctx aborts the search with ctx's error.
func (s *Searcher) Run(ctx context.Context, initial *tree.Unrooted) (res *Result, err error) {
	start := time.Now()
	logger := s.opts.Logger
	hooks := observability.Search()

	init, err := score(parsimony.NewSolver(), initial, s.matrix)
	if err != nil {
		return nil, err
	}
	hooks.OnSearchStart(ctx, initial.Leaves, s.matrix.Columns, s.opts.Workers)
	defer func() {
		d := time.Since(start)
		if err != nil {
			hooks.OnSearchComplete(ctx, 0, 0, 0, d, err)
			return
		}
		res.Stats.Duration = d
		hooks.OnSearchComplete(ctx, res.Score, len(res.Topologies), res.Stats.Iterations, d, nil)
	}()

	logger.Debug("scored initial topology",
		"leaves", initial.Leaves,
		"columns", s.matrix.Columns,
		"score", init.Score,
		"workers", s.opts.Workers)

	pool := NewPool(s.matrix, s.opts.Workers)
	res = &Result{
		Leaves:  initial.Leaves,
		Columns: s.matrix.Columns,
	}
	frontier := []*Topology{init}
	best := init.Score
	res.Stats.History = append(res.Stats.History, best)

	var moves []tree.Move
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// The frontier about to be expanded is the answer unless some
		// neighbor beats it.
		res.Topologies, res.Score = frontier, best
		if s.opts.MaxIterations > 0 && res.Stats.Iterations >= s.opts.MaxIterations {
			res.Truncated = true
			logger.Warn("iteration limit reached", "limit", s.opts.MaxIterations, "score", best)
			return res, nil
		}

		iterStart := time.Now()
		threshold := best - 1
		var tasks []Task
		for i, member := range frontier {
			moves = member.Tree.AppendMoves(moves[:0])
			for _, m := range moves {
				tasks = append(tasks, Task{Member: i, Move: m})
			}
		}
		outcomes, err := pool.Evaluate(ctx, frontier, tasks, threshold)
		if err != nil {
			return nil, err
		}
		next, nextBest := merge(outcomes, threshold)

		res.Stats.Iterations++
		res.Stats.Candidates += len(tasks)
		if s.opts.MaxFrontier > 0 && len(next) > s.opts.MaxFrontier {
			return nil, errors.New(errors.ErrCodeFrontierExhausted,
				"iteration %d produced %d co-optimal topologies at score %d (limit %d)",
				res.Stats.Iterations, len(next), nextBest, s.opts.MaxFrontier)
		}

		reported := best
		if len(next) > 0 {
			reported = nextBest
		}
		logger.Debug("expanded frontier",
			"iteration", res.Stats.Iterations,
			"candidates", len(tasks),
			"best", reported,
			"frontier", len(next),
			"duration", time.Since(iterStart))
		hooks.OnIteration(ctx, res.Stats.Iterations, len(tasks), reported, len(next), time.Since(iterStart))

		if len(next) == 0 {
			return res, nil
		}
		frontier, best = next, nextBest
		res.Stats.History = append(res.Stats.History, best)
	}
}

// merge reduces one batch of outcomes to the next frontier. Scores are
// compared against a running bound that starts at threshold: a lower score
// resets the frontier and a score equal to the bound joins it. Duplicate
// topologies are kept once.
func merge(outcomes []Outcome, threshold int) ([]*Topology, int) {
	bound := threshold
	var next []*Topology
	seen := make(map[string]bool)
	for _, o := range outcomes {
		if o.Topology == nil || o.Score > bound {
			continue
		}
		if o.Score < bound {
			next = next[:0]
			clear(seen)
			bound = o.Score
		}
		if k := o.Topology.Key(); !seen[k] {
			seen[k] = true
			next = append(next, o.Topology)
		}
	}
	return next, bound
}
