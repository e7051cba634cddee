package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the commands that take sheet settings.
const (
	FlagStart       = "start"
	FlagOutput      = "output"
	FlagOutputDir   = "output-dir"
	FlagFormat      = "format"
	FlagFont        = "font"
	FlagRows        = "rows"
	FlagColumns     = "columns"
	FlagPageSize    = "page-size"
	FlagOrientation = "orientation"
	FlagMarginLeft  = "margin-left"
	FlagMarginTop   = "margin-top"
	FlagMarginRight = "margin-right"
	FlagMarginBot   = "margin-bottom"
	FlagCellWidth   = "cell-width"
	FlagColumnGap   = "column-gap"
	FlagRowHeight   = "row-height"
	FlagFontSize    = "font-size"
	FlagInset       = "inset"
	FlagMarker      = "marker"
	FlagPadWidth    = "pad-width"
	FlagStore       = "store"
	FlagStoreName   = "counter-name"
)

// AddSheetFlags registers the sheet flags on fs. Defaults shown in help are
// the built-in defaults; only flags the user sets override lower layers.
func AddSheetFlags(fs *pflag.FlagSet) {
	d := Default()
	g := d.Sheet
	fs.Int(FlagStart, d.Start, "first label number (overrides the persisted counter)")
	fs.StringP(FlagOutput, "o", d.Output, "output file name")
	fs.String(FlagOutputDir, "", "directory the sheet is written to (default: working directory)")
	fs.StringP(FlagFormat, "f", d.Format, "output format: pdf, json")
	fs.String(FlagFont, d.Font, "standard PDF font")
	fs.Int(FlagRows, g.Rows, "label rows per sheet")
	fs.Int(FlagColumns, g.Columns, "label columns per sheet")
	fs.String(FlagPageSize, g.PageSize, "page size: A3, A4, A5, Letter, Legal")
	fs.String(FlagOrientation, g.Orientation, "page orientation: portrait, landscape")
	fs.Float64(FlagMarginLeft, g.Margins.Left, "left margin (cm)")
	fs.Float64(FlagMarginTop, g.Margins.Top, "top margin (cm)")
	fs.Float64(FlagMarginRight, g.Margins.Right, "right margin (cm)")
	fs.Float64(FlagMarginBot, g.Margins.Bottom, "bottom margin (cm)")
	fs.Float64(FlagCellWidth, g.CellWidth, "label cell width (cm)")
	fs.Float64(FlagColumnGap, g.ColumnGap, "gap between columns (cm)")
	fs.Float64(FlagRowHeight, g.RowHeight, "row height (cm)")
	fs.Float64(FlagFontSize, g.FontSize, "font size (pt)")
	fs.Float64(FlagInset, g.Inset, "horizontal text inset (cm)")
	fs.String(FlagMarker, g.Marker, "prefix of every label")
	fs.Int(FlagPadWidth, g.PadWidth, "minimum digits of the label number")
	AddStoreFlags(fs)
}

// AddStoreFlags registers the counter store flags on fs.
func AddStoreFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagStore, d.Store.Backend, "counter store: file, memory, redis, mongo, postgres, mysql")
	fs.String(FlagStoreName, d.Store.Name, "counter name in shared stores")
}

// ApplyFlags overlays every flag of fs that was set on the command line.
// Flags that are not registered on fs are skipped.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = c.applyFlag(fs, f.Name)
	})
	return err
}

func (c *Config) applyFlag(fs *pflag.FlagSet, name string) error {
	g := &c.Sheet
	switch name {
	case FlagStart:
		n, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		c.StartOverride = &n
	case FlagOutput:
		return getString(fs, name, &c.Output)
	case FlagOutputDir:
		return getString(fs, name, &c.OutputDir)
	case FlagFormat:
		return getString(fs, name, &c.Format)
	case FlagFont:
		return getString(fs, name, &c.Font)
	case FlagRows:
		return getInt(fs, name, &g.Rows)
	case FlagColumns:
		return getInt(fs, name, &g.Columns)
	case FlagPageSize:
		return getString(fs, name, &g.PageSize)
	case FlagOrientation:
		return getString(fs, name, &g.Orientation)
	case FlagMarginLeft:
		return getFloat(fs, name, &g.Margins.Left)
	case FlagMarginTop:
		return getFloat(fs, name, &g.Margins.Top)
	case FlagMarginRight:
		return getFloat(fs, name, &g.Margins.Right)
	case FlagMarginBot:
		return getFloat(fs, name, &g.Margins.Bottom)
	case FlagCellWidth:
		return getFloat(fs, name, &g.CellWidth)
	case FlagColumnGap:
		return getFloat(fs, name, &g.ColumnGap)
	case FlagRowHeight:
		return getFloat(fs, name, &g.RowHeight)
	case FlagFontSize:
		return getFloat(fs, name, &g.FontSize)
	case FlagInset:
		return getFloat(fs, name, &g.Inset)
	case FlagMarker:
		return getString(fs, name, &g.Marker)
	case FlagPadWidth:
		return getInt(fs, name, &g.PadWidth)
	case FlagStore:
		return getString(fs, name, &c.Store.Backend)
	case FlagStoreName:
		return getString(fs, name, &c.Store.Name)
	}
	return nil
}

func getString(fs *pflag.FlagSet, name string, dst *string) error {
	v, err := fs.GetString(name)
	if err == nil {
		*dst = v
	}
	return err
}

func getInt(fs *pflag.FlagSet, name string, dst *int) error {
	v, err := fs.GetInt(name)
	if err == nil {
		*dst = v
	}
	return err
}

func getFloat(fs *pflag.FlagSet, name string, dst *float64) error {
	v, err := fs.GetFloat64(name)
	if err == nil {
		*dst = v
	}
	return err
}
