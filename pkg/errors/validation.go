package errors

import "unicode"

// MaxLabelLength bounds a single leaf label (and therefore the column count).
const MaxLabelLength = 1 << 20

// ValidateLeafLabel checks a single leaf label for emptiness, length and
// alphabet. Only the upper-case symbols A, C, G and T are accepted.
func ValidateLeafLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "leaf label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "leaf label too long (max %d characters)", MaxLabelLength)
	}
	for i := 0; i < len(label); i++ {
		switch label[i] {
		case 'A', 'C', 'G', 'T':
		default:
			r := rune(label[i])
			if unicode.IsControl(r) {
				return New(ErrCodeInvalidSymbol, "leaf label %q contains control character at position %d", label, i)
			}
			return New(ErrCodeInvalidSymbol, "leaf label %q has symbol %q at position %d (must be one of A, C, G, T)", label, r, i)
		}
	}
	return nil
}

// ValidateLeafLabels validates every label and checks that all labels share
// one length, which becomes the character column count.
func ValidateLeafLabels(labels []string) (columns int, err error) {
	if len(labels) == 0 {
		return 0, New(ErrCodeInvalidInput, "no leaf labels")
	}
	columns = len(labels[0])
	for _, l := range labels {
		if err := ValidateLeafLabel(l); err != nil {
			return 0, err
		}
		if len(l) != columns {
			return 0, New(ErrCodeInconsistentColumnCount,
				"leaf label %q has length %d, want %d", l, len(l), columns)
		}
	}
	return columns, nil
}
