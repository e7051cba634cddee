// Package grid arranges reserved label numbers into a uniform table.
//
// Fill order is row-major: row 0 holds the first Columns numbers in
// ascending order, row 1 the next Columns, and so on. Label sheets are cut
// and scanned left-to-right, top-to-bottom, so this order is part of the
// contract and must not change.
//
// All cells share one width (cell width plus column gap) and all rows one
// height. Measurements are whole points.
package grid

import (
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/units"
)

const (
	// DefaultMarker prefixes every label text.
	DefaultMarker = "#"

	// DefaultPadWidth is the minimum number of digits of a label.
	DefaultPadWidth = 4

	// MaxLabels bounds the number of cells on one sheet.
	MaxLabels = 10000

	// MaxPadWidth bounds the padded digit count. It covers every int64.
	MaxPadWidth = 19
)

// Format controls how a label number is rendered as text.
type Format struct {
	Marker   string
	PadWidth int
}

// DefaultFormat returns the "#0001" style format.
func DefaultFormat() Format {
	return Format{Marker: DefaultMarker, PadWidth: DefaultPadWidth}
}

// Text returns the display text of label n.
func (f Format) Text(n int) string {
	return f.Marker + units.ZeroPad(n, f.PadWidth)
}

// Spec describes the shape and cell metrics of a grid, in points.
type Spec struct {
	Rows      int
	Columns   int
	CellWidth int
	ColumnGap int
	RowHeight int
	Format    Format
}

// Count returns the number of labels a grid of this shape consumes.
func (s Spec) Count() int {
	return s.Rows * s.Columns
}

// Validate checks the shape and metrics.
func (s Spec) Validate() error {
	if s.Rows <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "rows must be positive, got %d", s.Rows)
	}
	if s.Columns <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "columns must be positive, got %d", s.Columns)
	}
	if s.Rows > MaxLabels/s.Columns {
		return errors.New(errors.ErrCodeConfiguration, "%d x %d grid exceeds %d labels per sheet", s.Rows, s.Columns, MaxLabels)
	}
	if s.CellWidth <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "cell width must be positive, got %dpt", s.CellWidth)
	}
	if s.ColumnGap < 0 {
		return errors.New(errors.ErrCodeConfiguration, "column gap must not be negative, got %dpt", s.ColumnGap)
	}
	if s.RowHeight <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "row height must be positive, got %dpt", s.RowHeight)
	}
	if s.Format.PadWidth < 0 || s.Format.PadWidth > MaxPadWidth {
		return errors.New(errors.ErrCodeConfiguration, "pad width must be between 0 and %d, got %d", MaxPadWidth, s.Format.PadWidth)
	}
	return nil
}

// Cell is one label of the grid.
type Cell struct {
	Number int
	Text   string
}

// Grid is the laid out table of labels.
type Grid struct {
	Rows         int
	Columns      int
	ColumnWidths []int
	RowHeights   []int
	Cells        [][]Cell
}

// Build lays out numbers row-major into a Rows x Columns grid.
// The number of values must match the grid shape exactly.
func Build(numbers []int, spec Spec) (*Grid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(numbers) != spec.Count() {
		return nil, errors.New(errors.ErrCodeLayoutShape,
			"got %d numbers for a %dx%d grid (want %d)", len(numbers), spec.Rows, spec.Columns, spec.Count())
	}

	g := &Grid{
		Rows:         spec.Rows,
		Columns:      spec.Columns,
		ColumnWidths: make([]int, spec.Columns),
		RowHeights:   make([]int, spec.Rows),
		Cells:        make([][]Cell, spec.Rows),
	}
	for c := range g.ColumnWidths {
		g.ColumnWidths[c] = spec.CellWidth + spec.ColumnGap
	}
	for r := range g.RowHeights {
		g.RowHeights[r] = spec.RowHeight
	}

	i := 0
	for r := 0; r < spec.Rows; r++ {
		row := make([]Cell, spec.Columns)
		for c := range row {
			n := numbers[i]
			row[c] = Cell{Number: n, Text: spec.Format.Text(n)}
			i++
		}
		g.Cells[r] = row
	}
	return g, nil
}

// At returns the cell at row r, column c.
func (g *Grid) At(r, c int) Cell {
	return g.Cells[r][c]
}

// Width returns the total width of all columns.
func (g *Grid) Width() int {
	w := 0
	for _, cw := range g.ColumnWidths {
		w += cw
	}
	return w
}

// Height returns the total height of all rows.
func (g *Grid) Height() int {
	h := 0
	for _, rh := range g.RowHeights {
		h += rh
	}
	return h
}

// Texts returns the display texts, one slice per row.
func (g *Grid) Texts() [][]string {
	out := make([][]string, len(g.Cells))
	for r, row := range g.Cells {
		texts := make([]string, len(row))
		for c, cell := range row {
			texts[c] = cell.Text
		}
		out[r] = texts
	}
	return out
}

// Numbers returns all label numbers in fill order.
func (g *Grid) Numbers() []int {
	out := make([]int, 0, g.Rows*g.Columns)
	for _, row := range g.Cells {
		for _, cell := range row {
			out = append(out, cell.Number)
		}
	}
	return out
}
