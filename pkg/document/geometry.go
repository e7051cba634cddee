package document

import (
	"strings"

	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/units"
)

// Page orientations.
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// Default sheet geometry. These reproduce the scanner label sheet: 27 rows
// of 7 labels on A4 portrait.
const (
	DefaultRows         = 27
	DefaultColumns      = 7
	DefaultPageSize     = "A4"
	DefaultOrientation  = Portrait
	DefaultMarginLeft   = 0.8
	DefaultMarginTop    = 1.0
	DefaultMarginRight  = 0.8
	DefaultMarginBottom = 1.0
	DefaultCellWidth    = 2.5
	DefaultColumnGap    = 0.2
	DefaultRowHeight    = 0.895
	DefaultFontSize     = 13.0
	DefaultInset        = 0.2
)

// Margins holds page margins in centimeters.
type Margins struct {
	Left   float64 `toml:"left" json:"left"`
	Top    float64 `toml:"top" json:"top"`
	Right  float64 `toml:"right" json:"right"`
	Bottom float64 `toml:"bottom" json:"bottom"`
}

// Geometry is the complete physical description of a label sheet.
// Lengths are in centimeters, the font size in points.
type Geometry struct {
	Rows        int     `toml:"rows" json:"rows"`
	Columns     int     `toml:"columns" json:"columns"`
	PageSize    string  `toml:"page_size" json:"page_size"`
	Orientation string  `toml:"orientation" json:"orientation"`
	Margins     Margins `toml:"margins" json:"margins"`
	CellWidth   float64 `toml:"cell_width" json:"cell_width"`
	ColumnGap   float64 `toml:"column_gap" json:"column_gap"`
	RowHeight   float64 `toml:"row_height" json:"row_height"`
	FontSize    float64 `toml:"font_size" json:"font_size"`
	Inset       float64 `toml:"inset" json:"inset"`
	Marker      string  `toml:"marker" json:"marker"`
	PadWidth    int     `toml:"pad_width" json:"pad_width"`
}

// DefaultGeometry returns the scanner label sheet geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Rows:        DefaultRows,
		Columns:     DefaultColumns,
		PageSize:    DefaultPageSize,
		Orientation: DefaultOrientation,
		Margins: Margins{
			Left:   DefaultMarginLeft,
			Top:    DefaultMarginTop,
			Right:  DefaultMarginRight,
			Bottom: DefaultMarginBottom,
		},
		CellWidth: DefaultCellWidth,
		ColumnGap: DefaultColumnGap,
		RowHeight: DefaultRowHeight,
		FontSize:  DefaultFontSize,
		Inset:     DefaultInset,
		Marker:    grid.DefaultMarker,
		PadWidth:  grid.DefaultPadWidth,
	}
}

// Count returns the number of labels consumed per sheet.
func (g Geometry) Count() int {
	return g.Rows * g.Columns
}

// Validate checks every parameter. It is called before any number is
// allocated.
func (g Geometry) Validate() error {
	if g.Rows <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "rows must be positive, got %d", g.Rows)
	}
	if g.Columns <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "columns must be positive, got %d", g.Columns)
	}
	if _, ok := units.LookupPaper(g.PageSize); !ok {
		return errors.New(errors.ErrCodeConfiguration, "unknown page size %q (must be one of: %s)",
			g.PageSize, strings.Join(units.PaperNames(), ", "))
	}
	switch strings.ToLower(g.Orientation) {
	case Portrait, Landscape:
	default:
		return errors.New(errors.ErrCodeConfiguration, "invalid orientation %q (must be portrait or landscape)", g.Orientation)
	}
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"margin left", g.Margins.Left},
		{"margin top", g.Margins.Top},
		{"margin right", g.Margins.Right},
		{"margin bottom", g.Margins.Bottom},
		{"column gap", g.ColumnGap},
		{"inset", g.Inset},
	} {
		if m.value < 0 {
			return errors.New(errors.ErrCodeConfiguration, "%s must not be negative, got %gcm", m.name, m.value)
		}
	}
	if g.FontSize <= 0 {
		return errors.New(errors.ErrCodeConfiguration, "font size must be positive, got %g", g.FontSize)
	}
	return g.GridSpec().Validate()
}

// GridSpec converts the cell metrics to whole points.
func (g Geometry) GridSpec() grid.Spec {
	return grid.Spec{
		Rows:      g.Rows,
		Columns:   g.Columns,
		CellWidth: units.FloorPt(g.CellWidth),
		ColumnGap: units.FloorPt(g.ColumnGap),
		RowHeight: units.FloorPt(g.RowHeight),
		Format:    grid.Format{Marker: g.Marker, PadWidth: g.PadWidth},
	}
}

// Paper returns the oriented page size.
func (g Geometry) Paper() units.Paper {
	p, _ := units.LookupPaper(g.PageSize)
	if strings.EqualFold(g.Orientation, Landscape) {
		return p.Landscape()
	}
	return p
}
