package search

import (
	"context"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// ctxCheckInterval is how many tasks a worker scores between context checks.
const ctxCheckInterval = 64

// Task asks for the NNI neighbor Move of frontier member Member.
type Task struct {
	Member int
	Move   tree.Move
}

// Outcome is the result of one Task. Topology is nil when Score exceeded
// the threshold of the batch.
type Outcome struct {
	Score    int
	Topology *Topology
}

// Pool scores candidate topologies on a fixed set of workers. Each worker
// keeps its scratch between batches; a Pool must not run two batches at
// once.
type Pool struct {
	matrix  *parsimony.Matrix
	workers []*worker
}

type worker struct {
	solver    *parsimony.Solver
	neighbors []int
	labels    []byte
	scratch   tree.Unrooted
}

// NewPool returns a pool with n workers (at least one).
func NewPool(m *parsimony.Matrix, n int) *Pool {
	n = max(n, 1)
	p := &Pool{matrix: m, workers: make([]*worker, n)}
	for i := range p.workers {
		p.workers[i] = &worker{solver: parsimony.NewSolver()}
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Evaluate scores every task and returns one outcome per task, in task
// order. Candidates scoring at most threshold are materialized with their
// own copies of the tree and labels.
//
// Evaluate returns once every task is scored or the context is done.
func (p *Pool) Evaluate(ctx context.Context, frontier []*Topology, tasks []Task, threshold int) ([]Outcome, error) {
	out := make([]Outcome, len(tasks))
	if len(p.workers) == 1 || len(tasks) < 2 {
		w := p.workers[0]
		for i, t := range tasks {
			if i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			o, err := w.evaluate(p.matrix, frontier[t.Member], t.Move, threshold)
			if err != nil {
				return nil, err
			}
			out[i] = o
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var cursor atomic.Int64
	for _, w := range p.workers {
		g.Go(func() error {
			for n := 0; ; n++ {
				i := int(cursor.Add(1) - 1)
				if i >= len(tasks) {
					return nil
				}
				if n%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				t := tasks[i]
				o, err := w.evaluate(p.matrix, frontier[t.Member], t.Move, threshold)
				if err != nil {
					return err
				}
				out[i] = o
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *worker) evaluate(m *parsimony.Matrix, member *Topology, mv tree.Move, threshold int) (Outcome, error) {
	src := member.Tree
	w.neighbors = src.InterchangeInto(w.neighbors, mv)
	w.scratch = tree.Unrooted{Leaves: src.Leaves, Index: src.Index, Neighbors: w.neighbors}

	score, labels, err := w.solver.Evaluate(&w.scratch, m, w.labels)
	if err != nil {
		return Outcome{}, errors.Wrap(errors.ErrCodeInternal, err, "score neighbor %v", mv)
	}
	w.labels = labels
	if score > threshold {
		return Outcome{Score: score}, nil
	}

	t := &tree.Unrooted{Leaves: src.Leaves, Index: src.Index, Neighbors: slices.Clone(w.neighbors)}
	topo := &Topology{
		Tree:   t,
		Labels: parsimony.Labels(labels, m.Columns),
		Score:  score,
	}
	topo.Key()
	return Outcome{Score: score, Topology: topo}, nil
}
