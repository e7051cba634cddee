package units_test

import (
	"fmt"

	"github.com/matzehuels/labelsheet/pkg/units"
)

func ExampleFloorPt() {
	// The scanner sheet: 2.5 cm cells, 0.2 cm gaps, 0.895 cm rows
	fmt.Println(units.CmToPt(2.54))
	fmt.Println(units.FloorPt(2.5), units.FloorPt(0.2), units.FloorPt(0.895))
	// Output:
	// 72
	// 70 5 25
}

func ExampleZeroPad() {
	fmt.Println(units.ZeroPad(7, 4))
	fmt.Println(units.ZeroPad(12345, 4))
	// Output:
	// 0007
	// 12345
}
