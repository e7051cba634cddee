package units

import "strings"

// Paper is a named page size in points, portrait orientation.
type Paper struct {
	Name   string
	Width  float64
	Height float64
}

// Landscape returns the paper rotated by 90 degrees.
func (p Paper) Landscape() Paper {
	return Paper{Name: p.Name, Width: p.Height, Height: p.Width}
}

// Standard paper sizes.
var (
	A3     = Paper{Name: "A3", Width: 841.890, Height: 1190.551}
	A4     = Paper{Name: "A4", Width: 595.276, Height: 841.890}
	A5     = Paper{Name: "A5", Width: 419.528, Height: 595.276}
	Letter = Paper{Name: "Letter", Width: 612, Height: 792}
	Legal  = Paper{Name: "Legal", Width: 612, Height: 1008}
)

var papers = map[string]Paper{
	"a3":     A3,
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"legal":  Legal,
}

// LookupPaper returns the paper size with the given name, ignoring case.
func LookupPaper(name string) (Paper, bool) {
	p, ok := papers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PaperNames lists the accepted paper names.
func PaperNames() []string {
	return []string{"A3", "A4", "A5", "Letter", "Legal"}
}
