package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/pipeline"
	"github.com/matzehuels/parsimony/pkg/search"
)

// formatExt maps output formats to file extensions.
var formatExt = map[string]string{
	pipeline.FormatTxt:    ".txt",
	pipeline.FormatJSON:   ".json",
	pipeline.FormatNewick: ".nwk",
	pipeline.FormatDOT:    ".dot",
	pipeline.FormatSVG:    ".svg",
	pipeline.FormatPNG:    ".png",
}

// writeArtifacts writes rendered outputs. A single format without an output
// path goes to stdout; otherwise each format is written next to output (or
// next to input when output is empty) with its own extension.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, formats []string, output, input string) error {
	if len(formats) == 1 {
		data := artifacts[formats[0]]
		if output == "" {
			_, err := stdout.Write(data)
			return err
		}
		return writeFile(output, data)
	}

	base := basePath(output, input)
	for _, format := range formats {
		if err := writeFile(base+formatExt[format], artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped; an empty output uses
// input without its extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, known := range formatExt {
		if ext == known {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// isResultJSON reports whether path names a JSON result file.
func isResultJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), formatExt[pipeline.FormatJSON])
}

// sortedFormats returns the valid format names for help texts.
func sortedFormats() string {
	names := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// readResult loads a result file written by search: JSON when the name
// ends in .json, the text format otherwise.
func readResult(path string) (*search.Result, error) {
	if !isResultJSON(path) {
		return pio.ReadResultFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return pio.ReadJSON(f)
}
