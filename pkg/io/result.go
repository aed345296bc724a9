package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// Separator ends every topology block of a result file.
const Separator = "-----"

// WriteResult writes every topology of res as a text block.
func WriteResult(w io.Writer, res *search.Result) error {
	bw := bufio.NewWriter(w)
	for _, topo := range res.Topologies {
		writeTopology(bw, res.Score, topo)
	}
	return bw.Flush()
}

// WriteTopology writes a single topology block with its own score.
func WriteTopology(w io.Writer, topo *search.Topology) error {
	bw := bufio.NewWriter(w)
	writeTopology(bw, topo.Score, topo)
	return bw.Flush()
}

func writeTopology(bw *bufio.Writer, score int, topo *search.Topology) {
	t := topo.Tree
	fmt.Fprintf(bw, "%d\n", score)
	for v := 0; v < t.N(); v++ {
		for _, u := range t.Adj(v) {
			fmt.Fprintf(bw, "%d%s%d\n", v, EdgeSeparator, u)
		}
	}
	for v, l := range topo.Labels {
		fmt.Fprintf(bw, "%d%s%s\n", v, EdgeSeparator, l)
	}
	fmt.Fprintln(bw, Separator)
}

// WriteResultFile writes the text result format to path.
func WriteResultFile(path string, res *search.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteResult(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadResultFile opens path and parses it with [ReadResults].
func ReadResultFile(path string) (*search.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResults(f)
}

// ReadResults parses the text result format. The returned result takes its
// score from the first block; every topology keeps the score of its own
// block. Stats are not part of the format and stay zero.
func ReadResults(r io.Reader) (*search.Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*errors.MaxLabelLength)

	res := &search.Result{}
	var block []string
	lineNo, start := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line != Separator {
			if len(block) == 0 {
				start = lineNo
			}
			block = append(block, line)
			continue
		}
		topo, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("block at line %d: %w", start, err)
		}
		if len(res.Topologies) == 0 {
			res.Score = topo.Score
			res.Leaves = topo.Tree.Leaves
			if len(topo.Labels) > 0 {
				res.Columns = len(topo.Labels[0])
			}
		}
		res.Topologies = append(res.Topologies, topo)
		block = block[:0]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(block) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "block at line %d has no %q terminator", start, Separator)
	}
	if len(res.Topologies) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no topologies found")
	}
	return res, nil
}

func parseBlock(lines []string) (*search.Topology, error) {
	score, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "score line %q is not an integer", lines[0])
	}

	// Every node owns at least one line of the block, which bounds the ids.
	limit := len(lines) - 1
	var adj [][]int
	labels := map[int]string{}
	for _, line := range lines[1:] {
		from, to, ok := strings.Cut(line, EdgeSeparator)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "expected i%sj, got %q", EdgeSeparator, line)
		}
		v, err := parseNodeID(from, limit)
		if err != nil {
			return nil, err
		}
		if isNumber(to) {
			u, err := parseNodeID(to, limit)
			if err != nil {
				return nil, err
			}
			for len(adj) <= max(u, v) {
				adj = append(adj, nil)
			}
			adj[v] = append(adj[v], u)
			continue
		}
		labels[v] = to
	}

	leaves := 0
	for _, nb := range adj {
		if len(nb) == tree.LeafDegree {
			leaves++
		}
	}
	t, err := tree.New(leaves, adj)
	if err != nil {
		return nil, err
	}
	if len(labels) != t.N() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%d labels for %d nodes", len(labels), t.N())
	}
	out := make([]string, t.N())
	for v, l := range labels {
		if v >= t.N() {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "label for unknown node %d", v)
		}
		out[v] = l
	}
	return &search.Topology{Tree: t, Labels: out, Score: score}, nil
}

func parseNodeID(s string, limit int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "node %q is not a non-negative integer", s)
	}
	if v >= limit {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "node %d is out of range for a block of %d lines", v, limit)
	}
	return v, nil
}
