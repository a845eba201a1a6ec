package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/nconklindev/gopdon/internal/types"
)

// DetectionRowLimit is how many leading rows are searched for the
// warehouse-name header.
const DetectionRowLimit = 5

// WarehouseKeyword only appears in the header of multi-warehouse exports
// ("warehouse name").
const WarehouseKeyword = "tên kho hàng"

// Detector tells the two shopee export layouts apart.
type Detector struct {
	Single Table
	Multi  Table
}

// Detect returns Multi when any cell in the first DetectionRowLimit rows
// contains WarehouseKeyword, and Single otherwise, including for an empty
// sheet.
func (d Detector) Detect(sheet types.Sheet) Table {
	if hasWarehouseHeader(sheet) {
		return d.Multi
	}
	return d.Single
}

func hasWarehouseHeader(sheet types.Sheet) bool {
	keyword := fold(WarehouseKeyword)

	limit := len(sheet)
	if limit > DetectionRowLimit {
		limit = DetectionRowLimit
	}

	for i := 0; i < limit; i++ {
		for _, cell := range sheet[i] {
			if cell == nil {
				continue
			}
			if strings.Contains(fold(CellText(cell)), keyword) {
				return true
			}
		}
	}
	return false
}

// fold composes then case-folds so decomposed Vietnamese diacritics still match.
// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
