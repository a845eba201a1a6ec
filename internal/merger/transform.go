package merger

import (
	"github.com/nconklindev/gopdon/internal/mapping"
	"github.com/nconklindev/gopdon/internal/types"
)

// TransformRow copies the mapped cells of row into a new row as wide as
// the table's highest target column. Missing source cells stay empty.
func TransformRow(row types.Row, table mapping.Table, platform types.Platform, rules mapping.Rules) (types.Row, error) {
	width, err := table.Width()
	if err != nil {
		return nil, err
	}

	out := make(types.Row, width)
	for _, m := range table.Mappings {
		src, err := mapping.ColumnToIndex(m.Source)
		if err != nil {
			return nil, err
		}
		dst, err := mapping.ColumnToIndex(m.Target)
		if err != nil {
			return nil, err
		}

		var val types.Cell
		if src < len(row) {
			val = row[src]
		}
		if clean, ok := rules.Lookup(platform, m.Target); ok {
			val = clean(val)
		}
		out[dst] = val
	}

	return out, nil
}
