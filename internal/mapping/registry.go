package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nconklindev/gopdon/internal/types"
)

// Layout names the column layout a table was written for.
type Layout string

const (
	LayoutSingleWarehouse Layout = "single-warehouse"
	LayoutMultiWarehouse  Layout = "multi-warehouse"
	LayoutTikTok          Layout = "tiktok"
)

// ColumnMapping copies the source column into the target column.
type ColumnMapping struct {
	Source string
	Target string
}

// Table is the full remapping for one export layout. Targets are unique
// within a table; sources may repeat.
type Table struct {
	Layout   Layout
	Mappings []ColumnMapping
}

// Width is one past the highest target index, i.e. the width of every
// transformed row.
func (t Table) Width() (int, error) {
	width := 0
	for _, m := range t.Mappings {
		idx, err := ColumnToIndex(m.Target)
		if err != nil {
			return 0, fmt.Errorf("%s target: %w", t.Layout, err)
		}
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width, nil
}

func (t Table) validate() error {
	seen := make(map[int]bool, len(t.Mappings))
	for _, m := range t.Mappings {
		if _, err := ColumnToIndex(m.Source); err != nil {
			return fmt.Errorf("%s source: %w", t.Layout, err)
		}
		idx, err := ColumnToIndex(m.Target)
		if err != nil {
			return fmt.Errorf("%s target: %w", t.Layout, err)
		}
		if seen[idx] {
			return fmt.Errorf("%s: duplicate target column %s", t.Layout, m.Target)
		}
		seen[idx] = true
	}
	return nil
}

var singleWarehouse = Table{
	Layout: LayoutSingleWarehouse,
	Mappings: []ColumnMapping{
		{Source: "BA", Target: "A"},
		{Source: "BC", Target: "B"},
		{Source: "BG", Target: "C"},
		{Source: "G", Target: "D"},
		{Source: "A", Target: "E"},
		{Source: "S", Target: "F"},
		{Source: "AB", Target: "G"},
		{Source: "Z", Target: "H"},
		{Source: "BI", Target: "J"},
		{Source: "H", Target: "L"},
	},
}

var multiWarehouse = Table{
	Layout: LayoutMultiWarehouse,
	Mappings: []ColumnMapping{
		{Source: "BB", Target: "A"},
		{Source: "BD", Target: "B"},
		{Source: "BH", Target: "C"},
		{Source: "G", Target: "D"},
		{Source: "A", Target: "E"},
		{Source: "T", Target: "F"},
		{Source: "AC", Target: "G"},
		{Source: "AA", Target: "H"},
		{Source: "BJ", Target: "J"},
		{Source: "H", Target: "L"},
	},
}

var tiktok = Table{
	Layout: LayoutTikTok,
	Mappings: []ColumnMapping{
		{Source: "AM", Target: "A"},
		{Source: "AO", Target: "B"},
		{Source: "AQ", Target: "C"},
		{Source: "AI", Target: "D"},
		{Source: "A", Target: "E"},
		{Source: "G", Target: "F"},
		{Source: "P", Target: "G"},
		{Source: "J", Target: "H"},
		{Source: "N", Target: "K"},
		{Source: "AK", Target: "L"},
	},
}

// Cleaner rewrites a single cell after it has been copied.
type Cleaner func(types.Cell) types.Cell

// Rules maps a platform and an upper-case target label to a cleanup step.
type Rules map[types.Platform]map[string]Cleaner

// Lookup returns the cleaner for target under platform, if any.
func (r Rules) Lookup(platform types.Platform, target string) (Cleaner, bool) {
	byTarget, ok := r[platform]
	if !ok {
		return nil, false
	}
	c, ok := byTarget[strings.ToUpper(target)]
	return c, ok
}

// TrimDecimalSuffix undoes spreadsheet numeric formatting on ID-like values:
// the cell is rendered as text, trimmed, and one trailing ".00" is removed.
func TrimDecimalSuffix(c types.Cell) types.Cell {
	if c == nil {
		return nil
	}
	s := strings.TrimSpace(CellText(c))
	s = strings.TrimSuffix(s, ".00")
	if s == "" {
		return nil
	}
	return s
}

// CellText renders a cell the way a spreadsheet would show its raw value.
func CellText(c types.Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Registry holds every table and cleanup rule in use. It is immutable after
// construction and safe to share.
type Registry struct {
	Detector Detector
	TikTok   Table
	Rules    Rules
}

// NewRegistry validates every column label before the tables are used.
func NewRegistry(single, multi, tiktok Table, rules Rules) (*Registry, error) {
	for _, t := range []Table{single, multi, tiktok} {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}
	for _, byTarget := range rules {
		for target := range byTarget {
			if _, err := ColumnToIndex(target); err != nil {
				return nil, fmt.Errorf("cleanup rule: %w", err)
			}
		}
	}

	return &Registry{
		Detector: Detector{Single: single, Multi: multi},
		TikTok:   tiktok,
		Rules:    rules,
	}, nil
}

// DefaultRegistry returns the built-in shopee and tiktok tables.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(singleWarehouse, multiWarehouse, tiktok, Rules{
		types.Shopee: {"G": TrimDecimalSuffix},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// TableFor selects the table for one parsed sheet.
func (r *Registry) TableFor(platform types.Platform, sheet types.Sheet) (Table, error) {
	switch platform {
	case types.Shopee:
		return r.Detector.Detect(sheet), nil
	case types.TikTok:
		return r.TikTok, nil
	default:
		return Table{}, fmt.Errorf("%w: %q", types.ErrUnknownPlatform, platform)
	}
}
