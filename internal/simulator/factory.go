package simulator

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FactorySet synthesizes a plausible factory coefficient set for an
// N-port device: idealized opens/shorts/loads and lossless throughs
// with a small electrical delay, sampled at `points` frequencies up
// to fMaxGHz. Good enough to exercise clients end to end.
func FactorySet(ports, points int, fMaxGHz float64) CoefficientSet {
	set := CoefficientSet{Name: "FACTORY", Params: map[string][]Point{}}
	if points < 1 {
		points = 1
	}
	step := fMaxGHz / float64(points)

	freq := func(i int) float64 { return step * float64(i+1) }
	// reflection phase for a ~50ps offset at f GHz
	phase := func(fGHz float64) float64 { return -2 * math.Pi * fGHz * 1e9 * 50e-12 }

	for p := 1; p <= ports; p++ {
		var opens, shorts, loads []Point
		for i := 0; i < points; i++ {
			f := freq(i)
			rot := cmplx.Exp(complex(0, 2*phase(f)))
			opens = append(opens, Point{Frequency: f, S: []complex128{rot}})
			shorts = append(shorts, Point{Frequency: f, S: []complex128{-rot}})
			loads = append(loads, Point{Frequency: f, S: []complex128{complex(0.005, 0)}})
		}
		set.Params[fmt.Sprintf("P%d_OPEN", p)] = opens
		set.Params[fmt.Sprintf("P%d_SHORT", p)] = shorts
		set.Params[fmt.Sprintf("P%d_LOAD", p)] = loads
	}

	for p1 := 1; p1 <= ports; p1++ {
		for p2 := p1 + 1; p2 <= ports; p2++ {
			var through []Point
			for i := 0; i < points; i++ {
				f := freq(i)
				trans := cmplx.Exp(complex(0, phase(f)))
				// wire order S11 S21 S12 S22
				through = append(through, Point{Frequency: f, S: []complex128{0, trans, trans, 0}})
			}
			set.Params[fmt.Sprintf("P%d%d_THROUGH", p1, p2)] = through
		}
	}
	return set
}
