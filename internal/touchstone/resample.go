package touchstone

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Resample re-interpolates the curve onto the given frequency grid
// (Hz, strictly increasing). Real and imaginary parts of each
// S-parameter are fitted independently with piecewise-linear
// interpolants; frequencies outside the measured span clamp to the
// nearest endpoint.
func (t *Touchstone) Resample(freqs []float64) (Touchstone, error) {
	out := New(t.ports)
	if len(t.points) == 0 {
		return out, nil
	}
	if len(t.points) == 1 {
		for _, f := range freqs {
			out.AddDatapoint(Datapoint{
				Frequency: f,
				S:         append([]complex128(nil), t.points[0].S...),
			})
		}
		return out, nil
	}

	xs := make([]float64, len(t.points))
	for i, p := range t.points {
		xs[i] = p.Frequency
	}

	nS := len(t.points[0].S)
	res := make([]interp.PiecewiseLinear, nS)
	ims := make([]interp.PiecewiseLinear, nS)
	ys := make([]float64, len(t.points))
	for k := 0; k < nS; k++ {
		for i, p := range t.points {
			ys[i] = real(p.S[k])
		}
		if err := res[k].Fit(xs, ys); err != nil {
			return out, fmt.Errorf("fit S[%d] real: %w", k, err)
		}
		for i, p := range t.points {
			ys[i] = imag(p.S[k])
		}
		if err := ims[k].Fit(xs, ys); err != nil {
			return out, fmt.Errorf("fit S[%d] imag: %w", k, err)
		}
	}

	for _, f := range freqs {
		x := f
		if x < xs[0] {
			x = xs[0]
		}
		if x > xs[len(xs)-1] {
			x = xs[len(xs)-1]
		}
		p := Datapoint{Frequency: f, S: make([]complex128, nS)}
		for k := 0; k < nS; k++ {
			p.S[k] = complex(res[k].Predict(x), ims[k].Predict(x))
		}
		out.AddDatapoint(p)
	}
	return out, nil
}
