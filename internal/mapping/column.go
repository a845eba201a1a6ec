package mapping

import (
	"errors"
	"fmt"
)

var ErrInvalidColumnLabel = errors.New("invalid column label")

// maxLabelLen keeps the base-26 accumulator far away from int overflow.
const maxLabelLen = 7

// ColumnToIndex converts a spreadsheet column label to a zero-based index:
// A=0, Z=25, AA=26, AK=36, BB=53. Labels are case-insensitive.
func ColumnToIndex(label string) (int, error) {
	if label == "" || len(label) > maxLabelLen {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumnLabel, label)
	}

	index := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumnLabel, label)
		}
		index = index*26 + int(c-'A'+1)
	}

	return index - 1, nil
}

// MustColumnToIndex is ColumnToIndex for labels known at compile time.
func MustColumnToIndex(label string) int {
	idx, err := ColumnToIndex(label)
	if err != nil {
		panic(err)
	}
	return idx
}
