package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

type resultJSON struct {
	Score      int            `json:"score"`
	Leaves     int            `json:"leaves"`
	Columns    int            `json:"columns"`
	Truncated  bool           `json:"truncated,omitempty"`
	Topologies []topologyJSON `json:"topologies"`
	Stats      statsJSON      `json:"stats"`
}

type topologyJSON struct {
	Score     int      `json:"score"`
	Index     []int    `json:"index"`
	Neighbors []int    `json:"neighbors"`
	Labels    []string `json:"labels"`
}

type statsJSON struct {
	Iterations int     `json:"iterations"`
	Candidates int     `json:"candidates"`
	History    []int   `json:"history,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// MarshalResult converts a result to JSON bytes.
func MarshalResult(res *search.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalResult decodes JSON bytes produced by [MarshalResult].
func UnmarshalResult(data []byte) (*search.Result, error) {
	return ReadJSON(bytes.NewReader(data))
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *search.Result) error {
	out := resultJSON{
		Score:      res.Score,
		Leaves:     res.Leaves,
		Columns:    res.Columns,
		Truncated:  res.Truncated,
		Topologies: make([]topologyJSON, len(res.Topologies)),
		Stats: statsJSON{
			Iterations: res.Stats.Iterations,
			Candidates: res.Stats.Candidates,
			History:    res.Stats.History,
			DurationMS: float64(res.Stats.Duration.Microseconds()) / 1000,
		},
	}
	for i, topo := range res.Topologies {
		out.Topologies[i] = topologyJSON{
			Score:     topo.Score,
			Index:     topo.Tree.Index,
			Neighbors: topo.Tree.Neighbors,
			Labels:    topo.Labels,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a result written by [WriteJSON] and validates every
// topology.
func ReadJSON(r io.Reader) (*search.Result, error) {
	var data resultJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode result")
	}
	res := &search.Result{
		Score:     data.Score,
		Leaves:    data.Leaves,
		Columns:   data.Columns,
		Truncated: data.Truncated,
		Stats: search.Stats{
			Iterations: data.Stats.Iterations,
			Candidates: data.Stats.Candidates,
			History:    data.Stats.History,
			Duration:   time.Duration(data.Stats.DurationMS * float64(time.Millisecond)),
		},
	}
	for i, tj := range data.Topologies {
		if len(tj.Index) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "topology %d has no index table", i)
		}
		t := &tree.Unrooted{Leaves: data.Leaves, Index: tj.Index, Neighbors: tj.Neighbors}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("topology %d: %w", i, err)
		}
		if len(tj.Labels) != t.N() {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"topology %d has %d labels for %d nodes", i, len(tj.Labels), t.N())
		}
		res.Topologies = append(res.Topologies, &search.Topology{Tree: t, Labels: tj.Labels, Score: tj.Score})
	}
	return res, nil
}
