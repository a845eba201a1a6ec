package merger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/gopdon/internal/sheetio"
	"github.com/nconklindev/gopdon/internal/types"
)

func TestMerge_RealWorkbooks(t *testing.T) {
	codec := sheetio.New()

	single, err := codec.Serialize([]types.Row(shopeeSheet(4, false)), "orders")
	require.NoError(t, err)
	multi, err := codec.Serialize([]types.Row(shopeeSheet(3, true)), "orders")
	require.NoError(t, err)

	m := New(codec, nil, quietLogger())
	res, err := m.Merge([][]byte{single, multi}, types.Shopee, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Rows)

	f, err := excelize.OpenReader(bytes.NewReader(res.Data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"TỔNG HỢP SHOPEE"}, f.GetSheetList())

	rows, err := f.GetRows("TỔNG HỢP SHOPEE")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Mã đơn hàng", rows[0][4])
	assert.Equal(t, "ORDER-3", rows[3][4])
	assert.Equal(t, "3", rows[3][6])
	assert.Equal(t, "ORDER-2", rows[5][4])
	assert.Equal(t, "20", rows[5][6])
}
