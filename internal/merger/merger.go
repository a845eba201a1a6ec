package merger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nconklindev/gopdon/internal/mapping"
	"github.com/nconklindev/gopdon/internal/types"
)

var (
	ErrParseFailure = errors.New("could not read workbook")
	ErrNoValidData  = errors.New("no valid data found")
)

// SheetNamePrefix is followed by the upper-cased platform ("TỔNG HỢP SHOPEE").
const SheetNamePrefix = "TỔNG HỢP "

// Codec turns workbook bytes into a grid of cells and back.
type Codec interface {
	Parse(data []byte) (types.Sheet, error)
	Serialize(rows []types.Row, sheetName string) ([]byte, error)
}

type Merger struct {
	codec    Codec
	registry *mapping.Registry
	logger   *slog.Logger
}

func New(codec Codec, registry *mapping.Registry, logger *slog.Logger) *Merger {
	if registry == nil {
		registry = mapping.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{codec: codec, registry: registry, logger: logger}
}

// OutputFileName is the name a merged workbook is saved or downloaded as.
func OutputFileName(platform types.Platform, unixMillis int64) string {
	return fmt.Sprintf("KET_QUA_%s_%d.xlsx", platform.Upper(), unixMillis)
}

// SheetName is the name of the single sheet in a merged workbook.
func SheetName(platform types.Platform) string {
	return SheetNamePrefix + platform.Upper()
}

// Merge remaps every file onto the platform's target layout and
// concatenates the results in input order. Row 0 of the first file that has
// any rows is kept as data; row 0 of every later file is dropped as a
// repeated header. Files that parse to nothing are skipped. The first parse
// error aborts the merge.
//
// progressChan, if not nil, receives the fraction of files processed; sends
// never block.
func (m *Merger) Merge(files [][]byte, platform types.Platform, progressChan chan<- float64) (*types.MergeResult, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPlatform, platform)
	}

	reportProgress := func(done int) {
		if progressChan != nil && len(files) > 0 {
			select {
			case progressChan <- float64(done) / float64(len(files)):
			default:
			}
		}
	}

	var merged []types.Row
	reports := make([]types.FileReport, 0, len(files))
	isFirstFile := true

	for i, data := range files {
		sheet, err := m.codec.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: %w", ErrParseFailure, i+1, err)
		}

		if len(sheet) == 0 {
			m.logger.Debug("skipping empty file", "file", i+1)
			reports = append(reports, types.FileReport{Index: i, Skipped: true})
			reportProgress(i + 1)
			continue
		}

		table, err := m.registry.TableFor(platform, sheet)
		if err != nil {
			return nil, err
		}

		startRow := 1
		if isFirstFile {
			startRow = 0
		}

		appended := 0
		for _, row := range sheet[startRow:] {
			if row.Empty() {
				continue
			}
			out, err := TransformRow(row, table, platform, m.registry.Rules)
			if err != nil {
				return nil, fmt.Errorf("file %d: %w", i+1, err)
			}
			merged = append(merged, out)
			appended++
		}

		m.logger.Debug("file merged",
			"file", i+1,
			"layout", table.Layout,
			"rows", appended,
		)
		reports = append(reports, types.FileReport{Index: i, Layout: string(table.Layout), Rows: appended})
		isFirstFile = false
		reportProgress(i + 1)
	}

	if len(merged) == 0 {
		return nil, ErrNoValidData
	}

	sheetName := SheetName(platform)
	out, err := m.codec.Serialize(merged, sheetName)
	if err != nil {
		return nil, fmt.Errorf("writing merged workbook: %w", err)
	}

	m.logger.Info("merge complete",
		"platform", platform,
		"files", len(files),
		"rows", len(merged),
		"bytes", len(out),
	)

	return &types.MergeResult{
		Data:      out,
		SheetName: sheetName,
		Platform:  platform,
		Rows:      len(merged),
		Files:     reports,
	}, nil
}
