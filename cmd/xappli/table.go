package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// wrapWidth caps path and message columns. Catalog paths are long and
// would otherwise push the table past any terminal width.
const wrapWidth = 60

type column struct {
	title string
	right bool // counts and sizes
	wrap  bool // paths and error messages
}

func col(title string) column     { return column{title: title} }
func numCol(title string) column  { return column{title: title, right: true} }
func wrapCol(title string) column { return column{title: title, wrap: true} }

// outputTable collects the rows of one CLI table. Cells past the last
// column are dropped and missing cells render empty.
type outputTable struct {
	columns []column
	rows    []table.Row
	footer  table.Row
}

func newTable(columns ...column) *outputTable {
	return &outputTable{columns: columns}
}

func (t *outputTable) add(cells ...any) {
	t.rows = append(t.rows, t.row(cells))
}

// total sets a footer row, rendered below a rule.
func (t *outputTable) total(cells ...any) {
	t.footer = t.row(cells)
}

func (t *outputTable) row(cells []any) table.Row {
	r := make(table.Row, len(t.columns))
	for i := range r {
		r[i] = ""
		if i < len(cells) {
			r[i] = cells[i]
		}
	}
	return r
}

func (t *outputTable) render() string {
	if len(t.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(t.columns))
	configs := make([]table.ColumnConfig, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.title
		cfg := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.right {
			cfg.Align = text.AlignRight
			cfg.AlignFooter = text.AlignRight
		}
		if c.wrap {
			cfg.WidthMax = wrapWidth
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs[i] = cfg
	}
	tw.AppendHeader(header)
	tw.AppendRows(t.rows)
	if t.footer != nil {
		tw.AppendFooter(t.footer)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
