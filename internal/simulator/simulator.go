// Package simulator implements the device side of the LibreCAL
// command protocol: a dispatcher that parses incoming lines, drives
// the RF switch state machine and serves coefficient data. It backs
// the package tests and the librecal-sim binary.
package simulator

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
	"github.com/EhsanBagheri/LibreCAL/internal/switching"
)

// Point is one coefficient sample as it appears on the wire:
// frequency in GHz and S-parameters in wire order (S11 S21 S12 S22
// for a through).
type Point struct {
	Frequency float64
	S         []complex128
}

// CoefficientSet is one named kit stored on the device, keyed by the
// standard parameter names (P1_OPEN, P12_THROUGH, ...).
type CoefficientSet struct {
	Name   string
	Params map[string][]Point
}

// Config describes the simulated device.
type Config struct {
	Serial      string
	Firmware    string
	Ports       int
	Temperature float64
	HeaterPower float64
	Stable      bool
}

// Simulator answers LibreCAL protocol commands. One Dispatch call per
// exchange; Serve runs the accept loop for TCP clients.
type Simulator struct {
	mu   sync.Mutex
	cfg  Config
	sw   *switching.Controller
	sets []CoefficientSet
}

func New(cfg Config) *Simulator {
	if cfg.Firmware == "" {
		cfg.Firmware = "1.0.0"
	}
	if cfg.Serial == "" {
		cfg.Serial = "SIM0001"
	}
	return &Simulator{
		cfg: cfg,
		sw:  switching.NewController(cfg.Ports),
	}
}

// Switch exposes the underlying controller, mainly so tests can
// assert on switch state after dispatching commands.
func (s *Simulator) Switch() *switching.Controller { return s.sw }

// AddCoefficientSet appends a named set. The factory set must be
// added first; the list response reproduces insertion order.
func (s *Simulator) AddCoefficientSet(set CoefficientSet) {
	s.mu.Lock()
	s.sets = append(s.sets, set)
	s.mu.Unlock()
}

// SetTemperature updates the reported telemetry.
func (s *Simulator) SetTemperature(temp float64, stable bool) {
	s.mu.Lock()
	s.cfg.Temperature = temp
	s.cfg.Stable = stable
	s.mu.Unlock()
}

// Dispatch handles one command line and returns the response line
// (without termination). Unknown or malformed commands answer ERROR.
func (s *Simulator) Dispatch(line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "ERROR"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToUpper(fields[0]) {
	case "*IDN?":
		return "LibreCAL_" + s.cfg.Serial
	case ":FIRMWARE?":
		return s.cfg.Firmware
	case ":PORTS?":
		return strconv.Itoa(s.cfg.Ports)
	case ":PORT?":
		if len(fields) != 2 {
			return "ERROR"
		}
		port, err := strconv.Atoi(fields[1])
		if err != nil {
			return "ERROR"
		}
		return s.sw.GetStandard(port).String()
	case ":PORT":
		if len(fields) != 3 {
			return "ERROR"
		}
		port, err := strconv.Atoi(fields[1])
		if err != nil {
			return "ERROR"
		}
		if !s.sw.SetStandard(port, caldevice.ParseStandard(strings.ToUpper(fields[2]))) {
			return "ERROR"
		}
		return ""
	case ":TEMP?":
		return strconv.FormatFloat(s.cfg.Temperature, 'f', 2, 64)
	case ":TEMPERATURE:STABLE?":
		if s.cfg.Stable {
			return "TRUE"
		}
		return "FALSE"
	case ":HEATER:POWER?":
		return strconv.FormatFloat(s.cfg.HeaterPower, 'f', 3, 64)
	case ":VALID?":
		if s.sw.Valid() {
			return "TRUE"
		}
		return "FALSE"
	case ":COEFF:LIST?":
		names := make([]string, len(s.sets))
		for i, set := range s.sets {
			names[i] = set.Name
		}
		return strings.Join(names, ",")
	case ":COEFF:NUM?":
		if len(fields) != 3 {
			return "ERROR"
		}
		return strconv.Itoa(len(s.lookup(fields[1], fields[2])))
	case ":COEFF:GET?":
		if len(fields) != 4 {
			return "ERROR"
		}
		points := s.lookup(fields[1], fields[2])
		idx, err := strconv.Atoi(fields[3])
		if err != nil || idx < 0 || idx >= len(points) {
			return "ERROR"
		}
		return formatPoint(points[idx])
	default:
		return "ERROR"
	}
}

func (s *Simulator) lookup(set, param string) []Point {
	for _, cs := range s.sets {
		if cs.Name == set {
			return cs.Params[param]
		}
	}
	return nil
}

func formatPoint(p Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g", p.Frequency)
	for _, s := range p.S {
		fmt.Fprintf(&b, ",%g,%g", real(s), imag(s))
	}
	return b.String()
}
