package sheetio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/gopdon/internal/types"
)

// buildWorkbook writes values through the regular cell API, the way an
// exporting platform would, rather than through Serialize.
func buildWorkbook(t *testing.T, sheetName string, cells map[string]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheetName))
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue(sheetName, ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse_XLSX(t *testing.T) {
	data := buildWorkbook(t, "orders", map[string]interface{}{
		"A1": "Mã đơn hàng",
		"C1": "Tên kho hàng",
		"A2": "240101ABC",
		"B2": 1234,
		"C2": "00123",
		"D2": 12.5,
		"A4": "last",
	})

	sheet, err := New().Parse(data)
	require.NoError(t, err)
	require.Len(t, sheet, 4)

	assert.Equal(t, types.Row{"Mã đơn hàng", nil, "Tên kho hàng"}, sheet[0])
	assert.Equal(t, types.Row{"240101ABC", float64(1234), "00123", 12.5}, sheet[1])
	assert.True(t, sheet[2].Empty())
	assert.Equal(t, types.Row{"last"}, sheet[3])
}

func TestParse_OnlyFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "second"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := New().Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, types.Sheet{{"first"}}, sheet)
}

func TestParse_EmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", nil)

	sheet, err := New().Parse(data)
	require.NoError(t, err)
	assert.Empty(t, sheet)
}

func TestParse_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"Empty", nil},
		{"CSV", []byte("a,b,c\n1,2,3\n")},
		{"PDF", []byte("%PDF-1.7")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(tt.input)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Parse() error = %v; want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestParse_CorruptContainers(t *testing.T) {
	zip := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	_, err := New().Parse(zip)
	assert.Error(t, err)

	// A truncated compound-file header.
	ole := append(append([]byte{}, oleMagic...), 0, 0, 0, 0)
	_, err = New().Parse(ole)
	assert.Error(t, err)
}

func TestSerialize_RoundTrip(t *testing.T) {
	rows := []types.Row{
		{"Tên", nil, "Mã"},
		{"An", float64(2), "00123", nil, 3.75},
		{},
		{nil, nil, "x"},
	}

	data, err := New().Serialize(rows, "TỔNG HỢP SHOPEE")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"TỔNG HỢP SHOPEE"}, f.GetSheetList())

	sheet, err := New().Parse(data)
	require.NoError(t, err)
	require.Len(t, sheet, 4)
	assert.Equal(t, types.Row{"Tên", nil, "Mã"}, sheet[0])
	assert.Equal(t, types.Row{"An", float64(2), "00123", nil, 3.75}, sheet[1])
	assert.True(t, sheet[2].Empty())
	assert.Equal(t, types.Row{nil, nil, "x"}, sheet[3])
}

func TestSerialize_InvalidSheetName(t *testing.T) {
	_, err := New().Serialize([]types.Row{{"a"}}, "bad/name")
	assert.Error(t, err)
}

func TestParse_NumericLookingText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "00123"))
	require.NoError(t, f.SetCellStr("Sheet1", "B1", "42"))
	require.NoError(t, f.SetCellStr("Sheet1", "C1", "1e3"))
	require.NoError(t, f.SetCellInt("Sheet1", "D1", 42))
	require.NoError(t, f.SetCellFloat("Sheet1", "E1", 0.5, -1, 64))
	require.NoError(t, f.SetCellStr("Sheet1", "F1", "SPX-42"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := New().Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, sheet, 1)
	assert.Equal(t, types.Row{"00123", "42", "1e3", float64(42), 0.5, "SPX-42"}, sheet[0])
}

func TestXLSXCell(t *testing.T) {
	tests := []struct {
		name     string
		cellType excelize.CellType
		expected types.Cell
	}{
		{"Number", excelize.CellTypeNumber, float64(123)},
		{"Untyped", excelize.CellTypeUnset, float64(123)},
		{"Shared string", excelize.CellTypeSharedString, "00123"},
		{"Inline string", excelize.CellTypeInlineString, "00123"},
		{"Formula", excelize.CellTypeFormula, "00123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xlsxCell("00123", 123, tt.cellType)
			if got != tt.expected {
				t.Errorf("xlsxCell(%v) = %#v; want %#v", tt.cellType, got, tt.expected)
			}
		})
	}
}

func TestXLSCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected types.Cell
	}{
		{"Integer", "1234", float64(1234)},
		{"Decimal", "12.5", 12.5},
		{"Zero padded code", "00123", "00123"},
		{"Formatted decimal", "1234.00", "1234.00"},
		{"Long id", "2401019876543210123", "2401019876543210123"},
		{"Text", "SPX", "SPX"},
		{"Blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xlsCell(tt.input)
			if got != tt.expected {
				t.Errorf("xlsCell(%q) = %#v; want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSpreadsheet(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"orders.xlsx", true},
		{"ORDERS.XLS", true},
		{"dir/orders.Xlsx", true},
		{"orders.csv", false},
		{"orders", false},
	}

	for _, tt := range tests {
		if got := IsSpreadsheet(tt.path); got != tt.expected {
			t.Errorf("IsSpreadsheet(%q) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	data := buildWorkbook(t, "Sheet1", map[string]interface{}{"A1": "x"})

	path := filepath.Join(dir, "orders.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = ReadFile(filepath.Join(dir, "orders.csv"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
