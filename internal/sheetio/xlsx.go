package sheetio

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/gopdon/internal/types"
)

func parseXLSX(data []byte) (sheet types.Sheet, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet = make(types.Sheet, len(rows))
	for i, raw := range rows {
		row := make(types.Row, len(raw))
		for j, val := range raw {
			if val == "" {
				continue
			}
			// The type lookup dominates read time, so only text that
			// could be a number pays for it.
			n, perr := strconv.ParseFloat(val, 64)
			if perr != nil {
				row[j] = val
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			row[j] = xlsxCell(val, n, cellType)
		}
		sheet[i] = row
	}

	return sheet, nil
}

// xlsxCell picks between the parsed number n and the raw text val. Cells
// without a type attribute are numbers in the file format; strings stay
// strings even when they look numeric.
func xlsxCell(val string, n float64, cellType excelize.CellType) types.Cell {
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return n
	}
	return val
}

func writeXLSX(rows []types.Row, sheetName string) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet %q: %w", sheetName, err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		copy(values, row)
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flushing sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
