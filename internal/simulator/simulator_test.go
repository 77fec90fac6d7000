package simulator

import (
	"strings"
	"testing"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
)

func testSim() *Simulator {
	return New(Config{
		Serial:      "TEST01",
		Firmware:    "9.9.9",
		Ports:       2,
		Temperature: 35.5,
		HeaterPower: 0.25,
		Stable:      true,
	})
}

func TestDispatchIdentity(t *testing.T) {
	s := testSim()
	cases := map[string]string{
		"*IDN?":                "LibreCAL_TEST01",
		":FIRMWARE?":           "9.9.9",
		":PORTS?":              "2",
		":TEMP?":               "35.50",
		":TEMPerature:STABLE?": "TRUE",
		":HEATER:POWER?":       "0.250",
		":VALID?":              "TRUE",
	}
	for cmd, want := range cases {
		if got := s.Dispatch(cmd); got != want {
			t.Errorf("Dispatch(%q) = %q, want %q", cmd, got, want)
		}
	}
}

func TestDispatchDrivesSwitch(t *testing.T) {
	s := testSim()
	if got := s.Dispatch(":PORT 1 SHORT"); got != "" {
		t.Fatalf("set answered %q", got)
	}
	if got := s.Switch().GetStandard(1); got != caldevice.Short {
		t.Errorf("switch state %v, want Short", got)
	}
	if got := s.Dispatch(":PORT? 1"); got != "SHORT" {
		t.Errorf("get answered %q", got)
	}
	// unknown standard text falls to the None sentinel, same as the host side
	s.Dispatch(":PORT 2 WOBBLE")
	if got := s.Dispatch(":PORT? 2"); got != "NONE" {
		t.Errorf("unknown standard answered %q, want NONE", got)
	}
}

func TestDispatchErrors(t *testing.T) {
	s := testSim()
	for _, cmd := range []string{
		"",
		"NONSENSE?",
		":PORT? x",
		":PORT 9 OPEN",
		":PORT 1",
		":COEFF:GET? FACTORY P1_OPEN 0", // no sets loaded
	} {
		if got := s.Dispatch(cmd); got != "ERROR" {
			t.Errorf("Dispatch(%q) = %q, want ERROR", cmd, got)
		}
	}
}

func TestCoefficientQueries(t *testing.T) {
	s := testSim()
	s.AddCoefficientSet(CoefficientSet{
		Name: "FACTORY",
		Params: map[string][]Point{
			"P1_OPEN": {{Frequency: 1.0, S: []complex128{complex(1, 0)}}},
		},
	})
	s.AddCoefficientSet(CoefficientSet{Name: "USER1", Params: map[string][]Point{}})

	if got := s.Dispatch(":COEFF:LIST?"); got != "FACTORY,USER1" {
		t.Errorf("list answered %q", got)
	}
	if got := s.Dispatch(":COEFF:NUM? FACTORY P1_OPEN"); got != "1" {
		t.Errorf("num answered %q", got)
	}
	if got := s.Dispatch(":COEFF:NUM? FACTORY P2_OPEN"); got != "0" {
		t.Errorf("missing param num answered %q", got)
	}
	if got := s.Dispatch(":COEFF:GET? FACTORY P1_OPEN 0"); got != "1,1,0" {
		t.Errorf("get answered %q", got)
	}
	if got := s.Dispatch(":COEFF:GET? FACTORY P1_OPEN 1"); got != "ERROR" {
		t.Errorf("out-of-range get answered %q", got)
	}
}

func TestFactorySetShape(t *testing.T) {
	ports := 3
	set := FactorySet(ports, 5, 40)
	wantParams := 3*ports + ports*(ports-1)/2
	if len(set.Params) != wantParams {
		t.Fatalf("%d params, want %d", len(set.Params), wantParams)
	}
	for param, points := range set.Params {
		if len(points) != 5 {
			t.Errorf("%s has %d points, want 5", param, len(points))
		}
		wantDim := 1
		if strings.HasSuffix(param, "_THROUGH") {
			wantDim = 4
		}
		for _, p := range points {
			if len(p.S) != wantDim {
				t.Errorf("%s point has %d S-params, want %d", param, len(p.S), wantDim)
			}
			if p.Frequency <= 0 || p.Frequency > 40 {
				t.Errorf("%s point frequency %v out of range", param, p.Frequency)
			}
		}
	}
}
