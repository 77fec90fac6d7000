package touchstone

import (
	"strings"
	"testing"
)

func TestAddDatapointKeepsOrder(t *testing.T) {
	ts := New(1)
	for _, f := range []float64{1e9, 2e9, 3e9} {
		ts.AddDatapoint(Datapoint{Frequency: f, S: []complex128{complex(f, 0)}})
	}
	points := ts.Points()
	if len(points) != 3 {
		t.Fatalf("%d points", len(points))
	}
	for i, f := range []float64{1e9, 2e9, 3e9} {
		if points[i].Frequency != f {
			t.Errorf("point %d frequency %v, want %v", i, points[i].Frequency, f)
		}
	}
}

func TestFilename(t *testing.T) {
	one := New(1)
	two := New(2)
	if got := one.Filename("P1_OPEN"); got != "P1_OPEN.s1p" {
		t.Errorf("filename %q", got)
	}
	if got := two.Filename("P12_THROUGH"); got != "P12_THROUGH.s2p" {
		t.Errorf("filename %q", got)
	}
}

func TestWriteFormat(t *testing.T) {
	ts := New(1)
	ts.AddDatapoint(Datapoint{Frequency: 1e9, S: []complex128{complex(0.5, -0.25)}})

	var b strings.Builder
	if err := ts.Write(&b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "# Hz S RI R 50\n1e+09 0.5 -0.25\n"
	if b.String() != want {
		t.Errorf("output %q, want %q", b.String(), want)
	}
}

func TestResampleLinear(t *testing.T) {
	ts := New(1)
	ts.AddDatapoint(Datapoint{Frequency: 1e9, S: []complex128{complex(0, 0)}})
	ts.AddDatapoint(Datapoint{Frequency: 3e9, S: []complex128{complex(1, -1)}})

	out, err := ts.Resample([]float64{1e9, 2e9, 3e9})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	points := out.Points()
	if len(points) != 3 {
		t.Fatalf("%d points", len(points))
	}
	if got := points[1].S[0]; got != complex(0.5, -0.5) {
		t.Errorf("midpoint %v, want (0.5-0.5i)", got)
	}
	if points[0].S[0] != complex(0, 0) || points[2].S[0] != complex(1, -1) {
		t.Errorf("endpoints %v %v", points[0].S[0], points[2].S[0])
	}
}

func TestResampleClampsOutsideSpan(t *testing.T) {
	ts := New(1)
	ts.AddDatapoint(Datapoint{Frequency: 1e9, S: []complex128{complex(1, 0)}})
	ts.AddDatapoint(Datapoint{Frequency: 2e9, S: []complex128{complex(2, 0)}})

	out, err := ts.Resample([]float64{0.5e9, 3e9})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	points := out.Points()
	if points[0].S[0] != complex(1, 0) {
		t.Errorf("below span %v, want clamp to first point", points[0].S[0])
	}
	if points[1].S[0] != complex(2, 0) {
		t.Errorf("above span %v, want clamp to last point", points[1].S[0])
	}
	if points[0].Frequency != 0.5e9 || points[1].Frequency != 3e9 {
		t.Errorf("requested frequencies not preserved: %v %v", points[0].Frequency, points[1].Frequency)
	}
}

func TestResampleSinglePoint(t *testing.T) {
	ts := New(1)
	ts.AddDatapoint(Datapoint{Frequency: 1e9, S: []complex128{complex(0.25, 0.75)}})

	out, err := ts.Resample([]float64{0.5e9, 5e9})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for _, p := range out.Points() {
		if p.S[0] != complex(0.25, 0.75) {
			t.Errorf("single-point resample %v", p.S[0])
		}
	}
}
