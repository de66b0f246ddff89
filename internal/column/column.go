// Package column converts between zero-based column indices and the
// alphabetic labels spreadsheets use in cell references (A, B, ... Z, AA, ...).
//
// Labels form a bijective base-26 numeral system: there is no zero digit, so
// every non-negative index has exactly one label and the sequence runs
// Z, AA, AB without a gap.
package column

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const lettersInAlphabet = 26

var (
	// ErrNegativeIndex is returned when a column or row index is below zero.
	ErrNegativeIndex = errors.New("index must not be negative")
	// ErrInvalidLabel is returned when a label is empty, contains anything
	// other than latin letters, or does not fit in an int.
	ErrInvalidLabel = errors.New("invalid column label")
)

// ToLabel returns the alphabetic label of a zero-based column index.
// 0 -> "A", 25 -> "Z", 26 -> "AA", 701 -> "ZZ", 702 -> "AAA".
func ToLabel(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeIndex, index)
	}

	// Letters come out least significant first.
	var buf []byte
	for index >= 0 {
		buf = append(buf, byte('A'+index%lettersInAlphabet))
		index = index/lettersInAlphabet - 1
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// ToIndex is the inverse of ToLabel. Labels are case-insensitive.
func ToIndex(label string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLabel)
	}

	result := 0
	for _, r := range strings.ToUpper(label) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		if result > (math.MaxInt-lettersInAlphabet)/lettersInAlphabet {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidLabel, label)
		}
		result = result*lettersInAlphabet + int(r-'A'+1)
	}
	return result - 1, nil
}

// CellRef renders zero-based coordinates as an A1-style reference,
// e.g. CellRef(1, 2) == "B3".
func CellRef(col, row int) (string, error) {
	if row < 0 {
		return "", fmt.Errorf("%w: row %d", ErrNegativeIndex, row)
	}
	label, err := ToLabel(col)
	if err != nil {
		return "", err
	}
	return label + strconv.Itoa(row+1), nil
}
