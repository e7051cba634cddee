package document

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/grid"
	"github.com/matzehuels/labelsheet/pkg/sequence"
	"github.com/matzehuels/labelsheet/pkg/units"
)

func buildGrid(t *testing.T, geo Geometry, start int) *grid.Grid {
	t.Helper()
	r, _, err := sequence.Reserve(start, geo.Count())
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.Build(r.Numbers(), geo.GridSpec())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestDefaultGeometry(t *testing.T) {
	geo := DefaultGeometry()
	if err := geo.Validate(); err != nil {
		t.Fatalf("DefaultGeometry().Validate() = %v", err)
	}
	if geo.Count() != 189 {
		t.Errorf("Count() = %d, want 189", geo.Count())
	}
	want := grid.Spec{
		Rows:      27,
		Columns:   7,
		CellWidth: 70,
		ColumnGap: 5,
		RowHeight: 25,
		Format:    grid.Format{Marker: "#", PadWidth: 4},
	}
	if diff := cmp.Diff(want, geo.GridSpec()); diff != "" {
		t.Errorf("GridSpec() mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Geometry)
	}{
		{"zero rows", func(g *Geometry) { g.Rows = 0 }},
		{"negative columns", func(g *Geometry) { g.Columns = -2 }},
		{"unknown paper", func(g *Geometry) { g.PageSize = "B7" }},
		{"bad orientation", func(g *Geometry) { g.Orientation = "sideways" }},
		{"negative margin", func(g *Geometry) { g.Margins.Top = -0.1 }},
		{"zero font", func(g *Geometry) { g.FontSize = 0 }},
		{"zero cell width", func(g *Geometry) { g.CellWidth = 0 }},
		{"sub-point row height", func(g *Geometry) { g.RowHeight = 0.01 }},
		{"negative pad", func(g *Geometry) { g.PadWidth = -1 }},
		{"huge pad", func(g *Geometry) { g.PadWidth = 1 << 20 }},
		{"too many labels", func(g *Geometry) { g.Rows, g.Columns = 1<<20, 1<<20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := DefaultGeometry()
			tt.modify(&geo)
			err := geo.Validate()
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Validate() = %v, want %s error", err, errors.ErrCodeConfiguration)
			}
		})
	}
}

func TestGeometryValidateReportsFirstNegative(t *testing.T) {
	geo := DefaultGeometry()
	geo.Margins.Left = -1
	geo.Margins.Bottom = -2
	geo.Inset = -3
	for i := 0; i < 20; i++ {
		err := geo.Validate()
		if err == nil || !strings.Contains(err.Error(), "margin left") {
			t.Fatalf("Validate() = %v, want margin left error", err)
		}
	}
}

func TestAssembleScannerSheet(t *testing.T) {
	geo := DefaultGeometry()
	page, err := Assemble(buildGrid(t, geo, 1), geo)
	if err != nil {
		t.Fatal(err)
	}

	if page.Size != (Size{Name: "A4", Width: units.A4.Width, Height: units.A4.Height}) {
		t.Errorf("Size = %+v, want A4 portrait", page.Size)
	}
	if page.Orientation != Portrait {
		t.Errorf("Orientation = %q, want %q", page.Orientation, Portrait)
	}
	if page.Margins != [4]int{22, 28, 22, 28} {
		t.Errorf("Margins = %v, want [22 28 22 28]", page.Margins)
	}
	if page.Style != (Style{FontSize: 13, Inset: 5}) {
		t.Errorf("Style = %+v, want {13 5}", page.Style)
	}
	if len(page.Table.ColumnWidths) != 7 || page.Table.ColumnWidths[0] != 75 {
		t.Errorf("ColumnWidths = %v, want 7 x 75", page.Table.ColumnWidths)
	}
	if len(page.Table.RowHeights) != 27 || page.Table.RowHeights[26] != 25 {
		t.Errorf("RowHeights = %v, want 27 x 25", page.Table.RowHeights)
	}
	if page.LabelCount() != 189 {
		t.Errorf("LabelCount() = %d, want 189", page.LabelCount())
	}
	if got := page.Table.Cells[26][6]; got != "#0189" {
		t.Errorf("last cell = %q, want #0189", got)
	}
	if page.Overflows() {
		t.Errorf("default sheet overflows: table %dx%d, content %.1fx%.1f",
			page.TableWidth(), page.TableHeight(), page.ContentWidth(), page.ContentHeight())
	}
}

func TestAssembleLandscape(t *testing.T) {
	geo := DefaultGeometry()
	geo.Orientation = "Landscape"
	geo.Rows, geo.Columns = 3, 4
	page, err := Assemble(buildGrid(t, geo, 1), geo)
	if err != nil {
		t.Fatal(err)
	}
	if page.Orientation != Landscape {
		t.Errorf("Orientation = %q, want %q", page.Orientation, Landscape)
	}
	if page.Size.Width != units.A4.Height || page.Size.Height != units.A4.Width {
		t.Errorf("Size = %+v, want rotated A4", page.Size)
	}
}

func TestAssembleDoesNotInferOrientation(t *testing.T) {
	// A wide grid on portrait paper stays portrait and simply overflows.
	geo := DefaultGeometry()
	geo.Rows, geo.Columns = 2, 12
	page, err := Assemble(buildGrid(t, geo, 1), geo)
	if err != nil {
		t.Fatal(err)
	}
	if page.Orientation != Portrait || page.Size.Width != units.A4.Width {
		t.Errorf("page = %s %vx%v, want portrait A4", page.Orientation, page.Size.Width, page.Size.Height)
	}
	if !page.Overflows() {
		t.Error("Overflows() = false, want true for 12 columns of 75pt on A4")
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	geo := DefaultGeometry()
	g := buildGrid(t, geo, 1)
	geo.Rows = 26
	_, err := Assemble(g, geo)
	if !errors.Is(err, errors.ErrCodeLayoutShape) {
		t.Errorf("Assemble() = %v, want %s error", err, errors.ErrCodeLayoutShape)
	}
	_, err = Assemble(nil, geo)
	if !errors.Is(err, errors.ErrCodeLayoutShape) {
		t.Errorf("Assemble(nil) = %v, want %s error", err, errors.ErrCodeLayoutShape)
	}
}

func TestAssembleCopiesGrid(t *testing.T) {
	geo := DefaultGeometry()
	geo.Rows, geo.Columns = 1, 2
	g := buildGrid(t, geo, 1)
	page, err := Assemble(g, geo)
	if err != nil {
		t.Fatal(err)
	}
	g.ColumnWidths[0] = 999
	if page.Table.ColumnWidths[0] == 999 {
		t.Error("page shares column widths with the grid")
	}
}
