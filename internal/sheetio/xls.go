package sheetio

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/extrame/xls"

	"github.com/nconklindev/gopdon/internal/types"
)

// parseXLS reads the legacy binary format. The reader panics on some
// corrupt inputs, so panics are turned into errors here.
func parseXLS(data []byte, charset string) (sheet types.Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("reading xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), charset)
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, nil
	}

	for i := 0; i <= int(ws.MaxRow); i++ {
		raw := ws.Row(i)
		if raw == nil {
			sheet = append(sheet, nil)
			continue
		}
		row := make(types.Row, raw.LastCol())
		for j := raw.FirstCol(); j < raw.LastCol(); j++ {
			row[j] = xlsCell(raw.Col(j))
		}
		sheet = append(sheet, row)
	}

	return trimTrailingEmpty(sheet), nil
}

// xlsCell only sees formatted text, so a value becomes a number only when
// it round-trips exactly. Long numeric IDs and zero-padded codes stay text.
func xlsCell(val string) types.Cell {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(val, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == val {
		return n
	}
	return val
}

func trimTrailingEmpty(sheet types.Sheet) types.Sheet {
	end := len(sheet)
	for end > 0 && sheet[end-1].Empty() {
		end--
	}
	return sheet[:end]
}
