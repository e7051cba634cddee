package units

import (
	"testing"
)

func TestCmToPt(t *testing.T) {
	if got := CmToPt(2.54); got != 72 {
		t.Errorf("CmToPt(2.54) = %v, want 72", got)
	}
	if got := CmToPt(0); got != 0 {
		t.Errorf("CmToPt(0) = %v, want 0", got)
	}
}

func TestFloorPt(t *testing.T) {
	tests := []struct {
		name string
		cm   float64
		want int
	}{
		{"one inch", 2.54, 72},
		{"two inches", 5.08, 144},
		{"zero", 0, 0},
		{"one centimeter", 1.0, 28},
		{"left margin", 0.8, 22},
		{"cell width", 2.5, 70},
		{"column gap", 0.2, 5},
		{"row height", 0.895, 25},
		{"a4 width", 21.0, 595},
		{"a4 height", 29.7, 841},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloorPt(tt.cm); got != tt.want {
				t.Errorf("FloorPt(%v) = %d, want %d", tt.cm, got, tt.want)
			}
		})
	}
}

func TestZeroPad(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		width int
		want  string
	}{
		{"single digit", 7, 4, "0007"},
		{"exact width", 1234, 4, "1234"},
		{"wider than pad", 12345, 4, "12345"},
		{"zero", 0, 4, "0000"},
		{"no padding", 42, 0, "42"},
		{"negative width", 42, -3, "42"},
		{"wide pad", 189, 6, "000189"},
		{"negative number", -7, 4, "-007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZeroPad(tt.n, tt.width); got != tt.want {
				t.Errorf("ZeroPad(%d, %d) = %q, want %q", tt.n, tt.width, got, tt.want)
			}
		})
	}
}

func TestLookupPaper(t *testing.T) {
	tests := []struct {
		name   string
		want   Paper
		wantOK bool
	}{
		{"A4", A4, true},
		{"a4", A4, true},
		{" Letter ", Letter, true},
		{"legal", Legal, true},
		{"B5", Paper{}, false},
		{"", Paper{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupPaper(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LookupPaper(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLandscape(t *testing.T) {
	l := A4.Landscape()
	if l.Width != A4.Height || l.Height != A4.Width {
		t.Errorf("A4.Landscape() = %v, want swapped dimensions", l)
	}
}
