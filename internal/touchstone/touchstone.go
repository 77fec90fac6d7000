// Package touchstone holds S-parameter curves in memory and writes
// them out in touchstone (.sNp) format.
package touchstone

import (
	"fmt"
	"io"
)

// Datapoint is one frequency sample: the frequency in Hz and the
// S-parameter vector in touchstone order (S11 S12 S21 S22 for two
// ports, a single S11 for one port).
type Datapoint struct {
	Frequency float64
	S         []complex128
}

// Touchstone is an ordered sequence of datapoints for a fixed number
// of ports. Insertion order is frequency order as delivered.
type Touchstone struct {
	ports  int
	points []Datapoint
}

// New returns an empty curve for the given number of ports.
func New(ports int) Touchstone {
	return Touchstone{ports: ports}
}

func (t *Touchstone) Ports() int          { return t.ports }
func (t *Touchstone) Points() []Datapoint { return t.points }

// AddDatapoint appends p. Points must be appended in ascending
// frequency order; the device delivers them that way.
func (t *Touchstone) AddDatapoint(p Datapoint) {
	t.points = append(t.points, p)
}

// Write serializes the curve in touchstone RI format with Hz
// frequencies, the same shape the desktop tooling saves.
func (t *Touchstone) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Hz S RI R 50\n"); err != nil {
		return err
	}
	for _, p := range t.points {
		if _, err := fmt.Fprintf(w, "%g", p.Frequency); err != nil {
			return err
		}
		for _, s := range p.S {
			if _, err := fmt.Fprintf(w, " %g %g", real(s), imag(s)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Filename returns the conventional file name for a curve with this
// port count, e.g. "P1_OPEN.s1p".
func (t *Touchstone) Filename(base string) string {
	return fmt.Sprintf("%s.s%dp", base, t.ports)
}
