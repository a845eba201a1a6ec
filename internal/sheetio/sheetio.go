// Package sheetio reads the first worksheet of .xlsx and legacy .xls
// workbooks into raw cell grids and writes single-sheet .xlsx workbooks.
package sheetio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/gopdon/internal/types"
)

var ErrUnsupportedFormat = errors.New("unsupported workbook format")

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Extensions accepted by the file pickers.
var Extensions = []string{".xlsx", ".xls"}

// Codec is the excelize/xls backed workbook codec.
type Codec struct {
	// XLSCharset is passed to the legacy reader for non-unicode strings.
	XLSCharset string
}

func New() *Codec {
	return &Codec{XLSCharset: "utf-8"}
}

// Parse returns the first worksheet as rows of nil, string or float64 cells.
// The container is detected from its signature, not from a file name.
func (c *Codec) Parse(data []byte) (types.Sheet, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return parseXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return parseXLS(data, c.XLSCharset)
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Serialize writes rows to a new workbook holding a single sheet.
func (c *Codec) Serialize(rows []types.Row, sheetName string) ([]byte, error) {
	return writeXLSX(rows, sheetName)
}

// IsSpreadsheet reports whether path has an accepted extension.
func IsSpreadsheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile loads a workbook from disk after checking its extension.
func ReadFile(path string) ([]byte, error) {
	if !IsSpreadsheet(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return os.ReadFile(path)
}
