package merger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/gopdon/internal/mapping"
	"github.com/nconklindev/gopdon/internal/types"
)

// fakeCodec resolves each input buffer by its contents as a key.
type fakeCodec struct {
	sheets    map[string]types.Sheet
	written   []types.Row
	sheetName string
}

func (c *fakeCodec) Parse(data []byte) (types.Sheet, error) {
	sheet, ok := c.sheets[string(data)]
	if !ok {
		return nil, errors.New("not a workbook")
	}
	return sheet, nil
}

func (c *fakeCodec) Serialize(rows []types.Row, sheetName string) ([]byte, error) {
	c.written = rows
	c.sheetName = sheetName
	return []byte(fmt.Sprintf("%d rows", len(rows))), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// shopeeSheet returns n rows; row 0 is a header, optionally multi-warehouse.
func shopeeSheet(n int, multi bool) types.Sheet {
	header := make(types.Row, 62)
	header[0] = "Mã đơn hàng"
	if multi {
		header[mapping.MustColumnToIndex("BA")] = "Tên kho hàng"
	}
	sheet := types.Sheet{header}
	for i := 1; i < n; i++ {
		row := make(types.Row, 62)
		row[0] = fmt.Sprintf("ORDER-%d", i)
		row[mapping.MustColumnToIndex("AB")] = fmt.Sprintf("%d.00", i)
		row[mapping.MustColumnToIndex("AC")] = fmt.Sprintf("%d.00", i*10)
		sheet = append(sheet, row)
	}
	return sheet
}

func TestMerge_DropsHeaderOfLaterFiles(t *testing.T) {
	codec := &fakeCodec{sheets: map[string]types.Sheet{
		"one": shopeeSheet(10, false),
		"two": shopeeSheet(10, false),
	}}
	m := New(codec, nil, quietLogger())

	res, err := m.Merge([][]byte{[]byte("one"), []byte("two")}, types.Shopee, nil)
	require.NoError(t, err)

	assert.Equal(t, 19, res.Rows)
	require.Len(t, codec.written, 19)
	assert.Equal(t, "TỔNG HỢP SHOPEE", codec.sheetName)
	assert.Equal(t, "TỔNG HỢP SHOPEE", res.SheetName)
	assert.Equal(t, []byte("19 rows"), res.Data)

	// The first file's header row is kept as data.
	assert.Equal(t, "Mã đơn hàng", codec.written[0][4])
	assert.Equal(t, "ORDER-1", codec.written[1][4])
	assert.Equal(t, "ORDER-9", codec.written[9][4])
	assert.Equal(t, "ORDER-1", codec.written[10][4])

	for i, row := range codec.written {
		assert.Len(t, row, 12, "row %d", i)
	}
	assert.Equal(t, []types.FileReport{
		{Index: 0, Layout: string(mapping.LayoutSingleWarehouse), Rows: 10},
		{Index: 1, Layout: string(mapping.LayoutSingleWarehouse), Rows: 9},
	}, res.Files)
}

func TestMerge_MixedShopeeLayouts(t *testing.T) {
	codec := &fakeCodec{sheets: map[string]types.Sheet{
		"single": shopeeSheet(3, false),
		"multi":  shopeeSheet(3, true),
	}}
	m := New(codec, nil, quietLogger())

	res, err := m.Merge([][]byte{[]byte("single"), []byte("multi")}, types.Shopee, nil)
	require.NoError(t, err)
	require.Equal(t, 5, res.Rows)

	// Single-warehouse rows take G from AB, multi-warehouse rows from AC.
	assert.Equal(t, "1", codec.written[1][6])
	assert.Equal(t, "2", codec.written[2][6])
	assert.Equal(t, "10", codec.written[3][6])
	assert.Equal(t, "20", codec.written[4][6])

	assert.Equal(t, string(mapping.LayoutSingleWarehouse), res.Files[0].Layout)
	assert.Equal(t, string(mapping.LayoutMultiWarehouse), res.Files[1].Layout)
}

func TestMerge_TikTokUsesFixedTable(t *testing.T) {
	row := make(types.Row, 43)
	row[mapping.MustColumnToIndex("P")] = "1234.00"
	row[mapping.MustColumnToIndex("N")] = "note"
	row[mapping.MustColumnToIndex("AK")] = "Đã giao"
	codec := &fakeCodec{sheets: map[string]types.Sheet{
		"tt": {{"Tên kho hàng"}, row},
	}}
	m := New(codec, nil, quietLogger())

	res, err := m.Merge([][]byte{[]byte("tt")}, types.TikTok, nil)
	require.NoError(t, err)

	assert.Equal(t, "TỔNG HỢP TIKTOK", res.SheetName)
	require.Len(t, codec.written, 2)
	assert.Equal(t, "1234.00", codec.written[1][6])
	assert.Equal(t, "note", codec.written[1][10])
	assert.Equal(t, "Đã giao", codec.written[1][11])
	assert.Equal(t, string(mapping.LayoutTikTok), res.Files[0].Layout)
}

func TestMerge_SkipsEmptyRowsAndFiles(t *testing.T) {
	codec := &fakeCodec{sheets: map[string]types.Sheet{
		"empty": nil,
		"gaps":  {{"h"}, {}, {nil, nil}, {"a"}},
		"later": {{"header"}, {"b"}, nil},
	}}
	m := New(codec, nil, quietLogger())

	res, err := m.Merge([][]byte{[]byte("empty"), []byte("gaps"), []byte("later")}, types.TikTok, nil)
	require.NoError(t, err)

	// "gaps" is the first processed file, so its row 0 is data.
	require.Equal(t, 3, res.Rows)
	assert.Equal(t, "h", codec.written[0][4])
	assert.Equal(t, "a", codec.written[1][4])
	assert.Equal(t, "b", codec.written[2][4])
	assert.True(t, res.Files[0].Skipped)
}

func TestMerge_NoValidData(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{"Single empty file", []string{"empty"}},
		{"No files", nil},
		{"Only blank rows", []string{"blank"}},
		{"Later file with header only", []string{"empty", "blank"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &fakeCodec{sheets: map[string]types.Sheet{
				"empty": {},
				"blank": {{}, {nil}},
			}}
			m := New(codec, nil, quietLogger())

			var files [][]byte
			for _, f := range tt.files {
				files = append(files, []byte(f))
			}
			_, err := m.Merge(files, types.Shopee, nil)
			assert.ErrorIs(t, err, ErrNoValidData)
			assert.Nil(t, codec.written)
		})
	}
}

func TestMerge_ParseFailureAborts(t *testing.T) {
	codec := &fakeCodec{sheets: map[string]types.Sheet{"ok": {{"a"}}}}
	m := New(codec, nil, quietLogger())

	res, err := m.Merge([][]byte{[]byte("ok"), []byte("garbage")}, types.Shopee, nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Contains(t, err.Error(), "file 2")
	assert.Nil(t, codec.written)
}

func TestMerge_UnknownPlatform(t *testing.T) {
	m := New(&fakeCodec{}, nil, quietLogger())

	_, err := m.Merge([][]byte{[]byte("x")}, types.Platform("lazada"), nil)
	assert.ErrorIs(t, err, types.ErrUnknownPlatform)
}

func TestMerge_ReportsProgress(t *testing.T) {
	codec := &fakeCodec{sheets: map[string]types.Sheet{"a": {{"x"}}, "b": {}}}
	m := New(codec, nil, quietLogger())
	progress := make(chan float64, 10)

	_, err := m.Merge([][]byte{[]byte("a"), []byte("b")}, types.TikTok, progress)
	require.NoError(t, err)
	close(progress)

	var got []float64
	for p := range progress {
		got = append(got, p)
	}
	assert.Equal(t, []float64{0.5, 1}, got)
}

func TestMerge_UsesInjectedRegistry(t *testing.T) {
	narrow := mapping.Table{Layout: "narrow", Mappings: []mapping.ColumnMapping{{Source: "B", Target: "A"}}}
	registry, err := mapping.NewRegistry(narrow, narrow, narrow, nil)
	require.NoError(t, err)

	codec := &fakeCodec{sheets: map[string]types.Sheet{"a": {{"x", "y"}}}}
	m := New(codec, registry, quietLogger())

	_, err = m.Merge([][]byte{[]byte("a")}, types.Shopee, nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Row{{"y"}}, codec.written)
}

func TestNames(t *testing.T) {
	tests := []struct {
		platform  types.Platform
		sheetName string
		fileName  string
	}{
		{types.Shopee, "TỔNG HỢP SHOPEE", "KET_QUA_SHOPEE_1706400000000.xlsx"},
		{types.TikTok, "TỔNG HỢP TIKTOK", "KET_QUA_TIKTOK_1706400000000.xlsx"},
	}

	for _, tt := range tests {
		if got := SheetName(tt.platform); got != tt.sheetName {
			t.Errorf("SheetName(%s) = %q; want %q", tt.platform, got, tt.sheetName)
		}
		if got := OutputFileName(tt.platform, 1706400000000); got != tt.fileName {
			t.Errorf("OutputFileName(%s) = %q; want %q", tt.platform, got, tt.fileName)
		}
	}
}
