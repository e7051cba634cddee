// Package document wraps a label grid into a renderer-ready page description.
//
// A [Page] is the whole contract handed to a renderer: page size and
// orientation, four margins, one default text style and exactly one table
// without borders. There is no pagination. A run that needs more labels than
// fit on one page runs the pipeline again, starting from the advanced
// counter.
//
// Orientation and page dimensions are always taken from the [Geometry]. They
// are never inferred from the row and column counts.
package document

import (
	"strings"

	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/units"
)

// Size is the page size in points, already oriented.
type Size struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style is the default text style applied to every cell.
type Style struct {
	FontSize float64 `json:"font_size"`
	Inset    int     `json:"inset"` // horizontal text inset within a cell, points
}

// Table is a borderless table of text cells.
type Table struct {
	ColumnWidths []int      `json:"column_widths"`
	RowHeights   []int      `json:"row_heights"`
	Cells        [][]string `json:"cells"`
}

// Page is the abstract description of one label sheet.
type Page struct {
	Size        Size   `json:"size"`
	Orientation string `json:"orientation"`
	Margins     [4]int `json:"margins"` // left, top, right, bottom, points
	Style       Style  `json:"style"`
	Table       Table  `json:"table"`
}

// Margin indices into Page.Margins.
const (
	MarginLeft = iota
	MarginTop
	MarginRight
	MarginBottom
)

// Assemble builds the page description for g using the page settings of geo.
func Assemble(g *grid.Grid, geo Geometry) (*Page, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeLayoutShape, "no grid to assemble")
	}
	if g.Rows != geo.Rows || g.Columns != geo.Columns {
		return nil, errors.New(errors.ErrCodeLayoutShape,
			"grid is %dx%d but geometry is %dx%d", g.Rows, g.Columns, geo.Rows, geo.Columns)
	}
	if _, ok := units.LookupPaper(geo.PageSize); !ok {
		return nil, errors.New(errors.ErrCodeConfiguration, "unknown page size %q", geo.PageSize)
	}
	paper := geo.Paper()
	orientation := Portrait
	if strings.EqualFold(geo.Orientation, Landscape) {
		orientation = Landscape
	}

	return &Page{
		Size:        Size{Name: paper.Name, Width: paper.Width, Height: paper.Height},
		Orientation: orientation,
		Margins: [4]int{
			units.FloorPt(geo.Margins.Left),
			units.FloorPt(geo.Margins.Top),
			units.FloorPt(geo.Margins.Right),
			units.FloorPt(geo.Margins.Bottom),
		},
		Style: Style{
			FontSize: geo.FontSize,
			Inset:    units.FloorPt(geo.Inset),
		},
		Table: Table{
			ColumnWidths: append([]int(nil), g.ColumnWidths...),
			RowHeights:   append([]int(nil), g.RowHeights...),
			Cells:        g.Texts(),
		},
	}, nil
}

// ContentWidth returns the printable width between the left and right margins.
func (p *Page) ContentWidth() float64 {
	return p.Size.Width - float64(p.Margins[MarginLeft]+p.Margins[MarginRight])
}

// ContentHeight returns the printable height between the top and bottom margins.
func (p *Page) ContentHeight() float64 {
	return p.Size.Height - float64(p.Margins[MarginTop]+p.Margins[MarginBottom])
}

// TableWidth returns the sum of all column widths.
func (p *Page) TableWidth() int {
	w := 0
	for _, cw := range p.Table.ColumnWidths {
		w += cw
	}
	return w
}

// TableHeight returns the sum of all row heights.
func (p *Page) TableHeight() int {
	h := 0
	for _, rh := range p.Table.RowHeights {
		h += rh
	}
	return h
}

// Overflows reports whether the table does not fit the printable area.
// Renderers still draw it; content past the margins is clipped by the page.
func (p *Page) Overflows() bool {
	return float64(p.TableWidth()) > p.ContentWidth() || float64(p.TableHeight()) > p.ContentHeight()
}

// LabelCount returns the number of cells in the table.
func (p *Page) LabelCount() int {
	n := 0
	for _, row := range p.Table.Cells {
		n += len(row)
	}
	return n
}
