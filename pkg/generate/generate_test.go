package generate

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/tree"
)

func TestTopologyQuartet(t *testing.T) {
	got, err := Topology(4)
	if err != nil {
		t.Fatalf("Topology() error = %v", err)
	}
	want, _ := tree.New(4, [][]int{{4}, {4}, {5}, {5}, {5, 0, 1}, {4, 2, 3}})
	if !got.Equal(want) {
		t.Errorf("Topology(4) = %v, want %v", got, want)
	}
}

func TestTopologyShapes(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for leaves := 2; leaves <= 64; leaves++ {
		for _, build := range []func() (*tree.Unrooted, error){
			func() (*tree.Unrooted, error) { return Topology(leaves) },
			func() (*tree.Unrooted, error) { return RandomTopology(rng, leaves) },
		} {
			tr, err := build()
			if err != nil {
				t.Fatalf("L=%d: error = %v", leaves, err)
			}
			if tr.Leaves != leaves || tr.N() != 2*leaves-2 {
				t.Fatalf("L=%d: got %d leaves and %d nodes", leaves, tr.Leaves, tr.N())
			}
			if _, err := tree.Orient(tr); err != nil {
				t.Fatalf("L=%d: Orient() error = %v", leaves, err)
			}
		}
	}
}

func TestTopologyTooSmall(t *testing.T) {
	if _, err := Topology(1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Topology(1) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, shape := range []string{ShapeBalanced, ShapeRandom} {
		t.Run(shape, func(t *testing.T) {
			opts := Options{Leaves: 12, Length: 20, Seed: 42, Shape: shape}
			a, err := Generate(opts)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			b, _ := Generate(opts)
			if !a.Tree.Equal(b.Tree) || !slices.Equal(a.Labels, b.Labels) {
				t.Error("Generate() is not deterministic for a fixed seed")
			}
			opts.Seed = 43
			c, _ := Generate(opts)
			if slices.Equal(a.Labels, c.Labels) {
				t.Error("Generate() produced identical labels for different seeds")
			}
		})
	}
}

func TestLabels(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	labels, err := Labels(rng, 16, 2)
	if err != nil {
		t.Fatalf("Labels() error = %v", err)
	}
	seen := map[string]bool{}
	for _, l := range labels {
		if len(l) != 2 {
			t.Errorf("label %q has length %d, want 2", l, len(l))
		}
		if strings.Trim(l, alphabet) != "" {
			t.Errorf("label %q has symbols outside %s", l, alphabet)
		}
		if seen[l] {
			t.Errorf("label %q drawn twice", l)
		}
		seen[l] = true
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"defaults", Options{}, true},
		{"one leaf", Options{Leaves: 1}, false},
		{"negative length", Options{Length: -1}, false},
		{"too few distinct labels", Options{Leaves: 5, Length: 1}, false},
		{"exactly enough labels", Options{Leaves: 4, Length: 1}, true},
		{"unknown shape", Options{Shape: "star"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err == nil) != tt.ok {
				t.Errorf("ValidateAndSetDefaults() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}

	var o Options
	_ = o.ValidateAndSetDefaults()
	if o.Leaves != DefaultLeaves || o.Length != DefaultLength || o.Shape != DefaultShape {
		t.Errorf("defaults = %+v", o)
	}
}
