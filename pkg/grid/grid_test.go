package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/sequence"
)

func testSpec(rows, cols int) Spec {
	return Spec{
		Rows:      rows,
		Columns:   cols,
		CellWidth: 70,
		ColumnGap: 5,
		RowHeight: 25,
		Format:    DefaultFormat(),
	}
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		n      int
		want   string
	}{
		{"default", DefaultFormat(), 1, "#0001"},
		{"default wide", DefaultFormat(), 12345, "#12345"},
		{"no marker", Format{PadWidth: 3}, 7, "007"},
		{"custom marker", Format{Marker: "INV-", PadWidth: 6}, 42, "INV-000042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Text(tt.n); got != tt.want {
				t.Errorf("Text(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestBuildScannerSheet(t *testing.T) {
	r, next, err := sequence.Reserve(1, 27*7)
	if err != nil {
		t.Fatal(err)
	}
	g, err := Build(r.Numbers(), testSpec(27, 7))
	if err != nil {
		t.Fatal(err)
	}

	if g.Rows != 27 || g.Columns != 7 || len(g.Cells) != 27 {
		t.Fatalf("grid shape = %dx%d (%d rows), want 27x7", g.Rows, g.Columns, len(g.Cells))
	}
	checks := []struct {
		r, c int
		want string
	}{
		{0, 0, "#0001"},
		{0, 6, "#0007"},
		{1, 0, "#0008"},
		{26, 6, "#0189"},
	}
	for _, ck := range checks {
		if got := g.At(ck.r, ck.c).Text; got != ck.want {
			t.Errorf("cell[%d][%d] = %q, want %q", ck.r, ck.c, got, ck.want)
		}
	}
	if next != 190 {
		t.Errorf("next = %d, want 190", next)
	}
}

func TestBuildSequentialCoverage(t *testing.T) {
	shapes := []struct{ rows, cols int }{{1, 1}, {1, 9}, {9, 1}, {3, 4}, {27, 7}, {10, 10}}
	starts := []int{0, 1, 190, 9995}

	for _, shape := range shapes {
		for _, start := range starts {
			r, _, err := sequence.Reserve(start, shape.rows*shape.cols)
			if err != nil {
				t.Fatal(err)
			}
			g, err := Build(r.Numbers(), testSpec(shape.rows, shape.cols))
			if err != nil {
				t.Fatal(err)
			}

			// Row-major walk must visit start, start+1, ... exactly once each.
			want := start
			for ri, row := range g.Cells {
				if len(row) != shape.cols {
					t.Fatalf("%dx%d: row %d has %d cells", shape.rows, shape.cols, ri, len(row))
				}
				for ci, cell := range row {
					if cell.Number != want {
						t.Fatalf("%dx%d start %d: cell[%d][%d] = %d, want %d",
							shape.rows, shape.cols, start, ri, ci, cell.Number, want)
					}
					want++
				}
			}
			if want != start+shape.rows*shape.cols {
				t.Errorf("%dx%d: visited %d cells", shape.rows, shape.cols, want-start)
			}
		}
	}
}

func TestBuildMetrics(t *testing.T) {
	g, err := Build([]int{1, 2, 3, 4, 5, 6}, testSpec(2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{75, 75, 75}, g.ColumnWidths); diff != "" {
		t.Errorf("ColumnWidths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{25, 25}, g.RowHeights); diff != "" {
		t.Errorf("RowHeights mismatch (-want +got):\n%s", diff)
	}
	if g.Width() != 225 || g.Height() != 50 {
		t.Errorf("size = %dx%d, want 225x50", g.Width(), g.Height())
	}
	want := [][]string{{"#0001", "#0002", "#0003"}, {"#0004", "#0005", "#0006"}}
	if diff := cmp.Diff(want, g.Texts()); diff != "" {
		t.Errorf("Texts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, g.Numbers()); diff != "" {
		t.Errorf("Numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		spec    Spec
		code    errors.Code
	}{
		{"too few numbers", []int{1, 2, 3}, testSpec(2, 2), errors.ErrCodeLayoutShape},
		{"too many numbers", []int{1, 2, 3, 4, 5}, testSpec(2, 2), errors.ErrCodeLayoutShape},
		{"no numbers", nil, testSpec(1, 1), errors.ErrCodeLayoutShape},
		{"zero rows", nil, testSpec(0, 7), errors.ErrCodeConfiguration},
		{"negative columns", nil, testSpec(3, -1), errors.ErrCodeConfiguration},
		{"zero cell width", []int{1}, Spec{Rows: 1, Columns: 1, RowHeight: 10}, errors.ErrCodeConfiguration},
		{"negative gap", []int{1}, Spec{Rows: 1, Columns: 1, CellWidth: 10, ColumnGap: -1, RowHeight: 10}, errors.ErrCodeConfiguration},
		{"zero row height", []int{1}, Spec{Rows: 1, Columns: 1, CellWidth: 10}, errors.ErrCodeConfiguration},
		{"too many labels", []int{1}, testSpec(1000000, 100000), errors.ErrCodeConfiguration},
		{"just over label limit", []int{1}, testSpec(MaxLabels/10+1, 10), errors.ErrCodeConfiguration},
		{"huge pad width", []int{1}, Spec{Rows: 1, Columns: 1, CellWidth: 10, RowHeight: 10, Format: Format{PadWidth: 1000}}, errors.ErrCodeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.numbers, tt.spec)
			if err == nil {
				t.Fatal("Build() error = nil, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}
