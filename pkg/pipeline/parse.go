package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/parsimony/pkg/errors"
	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/observability"
)

// inlineSource names inline input in logs and metrics.
const inlineSource = "inline"

// Parse reads the input named by opts and validates its topology and
// labels.
func Parse(ctx context.Context, opts Options) (in *pio.Input, err error) {
	source := opts.Input
	if source == "" {
		source = inlineSource
	}
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	start := time.Now()
	defer func() {
		leaves, columns := 0, 0
		if in != nil {
			leaves = in.Tree.Leaves
			columns = len(in.Labels[0])
		}
		hooks.OnParseComplete(ctx, source, leaves, columns, time.Since(start), err)
	}()

	data := []byte(opts.Source)
	if opts.Input != "" {
		if data, err = os.ReadFile(opts.Input); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	}

	syntax := opts.Syntax
	if syntax == SyntaxAuto {
		syntax = DetectSyntax(opts.Input, data)
	}
	if syntax == SyntaxNewick {
		return pio.ReadNewick(bytes.NewReader(data))
	}
	return pio.ReadAdjacency(bytes.NewReader(data))
}

// DetectSyntax guesses the input syntax from the file extension, falling
// back to the first non-blank character: Newick input starts with '('.
func DetectSyntax(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nwk", ".newick", ".tre":
		return SyntaxNewick
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '(' {
		return SyntaxNewick
	}
	return SyntaxAdjacency
}

// Normalize returns the canonical adjacency text of in. Inputs that differ
// only in whitespace, edge direction or duplicate edges normalize to the
// same bytes.
func Normalize(in *pio.Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := pio.WriteAdjacency(&buf, in.Tree, in.Labels); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "normalize input")
	}
	return buf.Bytes(), nil
}
