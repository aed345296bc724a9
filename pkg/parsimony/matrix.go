package parsimony

import (
	"github.com/matzehuels/parsimony/pkg/errors"
)

// Symbols is the alphabet size.
const Symbols = 4

// Alphabet maps symbol codes 0..3 to their letters.
const Alphabet = "ACGT"

// Encode returns the code of an alphabet letter.
func Encode(b byte) (uint8, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	}
	return 0, false
}

// Decode returns the letter for a symbol code.
func Decode(s uint8) byte { return Alphabet[s] }

// Matrix holds the fixed leaf symbols of a character matrix, column-major.
// Internal node rows are not stored here; they are produced by a [Solver]
// and written into caller-owned label buffers.
type Matrix struct {
	Leaves  int     // L
	Columns int     // K
	Cells   []uint8 // Cells[k*Leaves+v] is the symbol of leaf v in column k
}

// NewMatrix encodes one label per leaf, indexed by leaf number. Labels must
// be non-empty, of equal length, and drawn from the alphabet.
func NewMatrix(labels []string) (*Matrix, error) {
	cols, err := errors.ValidateLeafLabels(labels)
	if err != nil {
		return nil, err
	}
	m := &Matrix{
		Leaves:  len(labels),
		Columns: cols,
		Cells:   make([]uint8, cols*len(labels)),
	}
	for v, l := range labels {
		for k := 0; k < cols; k++ {
			m.Cells[k*m.Leaves+v], _ = Encode(l[k])
		}
	}
	return m, nil
}

// At returns the symbol of leaf v in column k.
func (m *Matrix) At(k, v int) uint8 { return m.Cells[k*m.Leaves+v] }

// Label decodes the full label of leaf v.
func (m *Matrix) Label(v int) string {
	b := make([]byte, m.Columns)
	for k := range b {
		b[k] = Decode(m.At(k, v))
	}
	return string(b)
}

// Hamming returns the number of positions at which a and b differ. Labels
// of unequal length count every extra position as a difference.
func Hamming(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	d := len(b) - len(a)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
