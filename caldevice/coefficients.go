package caldevice

import (
	"sync"

	"github.com/EhsanBagheri/LibreCAL/internal/touchstone"
)

// Coefficient is one calibration curve: the S-parameter data for a
// single standard at a port (one-port) or port pair (through).
// Modified is only ever set by edits made after retrieval; the
// retrieval task always delivers coefficients with Modified false.
type Coefficient struct {
	Data     touchstone.Touchstone
	Modified bool
}

// CoefficientSet holds the curves of one named calibration kit on an
// N-port device: Open/Short/Load per port, plus one Through per
// unordered port pair. Ports is fixed at creation; the slices are
// ordered by port, throughs by the pairing sequence
// (1,2)..(1,N),(2,3)..(N-1,N).
type CoefficientSet struct {
	Name     string
	Ports    int
	Opens    []Coefficient
	Shorts   []Coefficient
	Loads    []Coefficient
	Throughs []Coefficient
}

// Through returns the coefficient between port1 and port2, which the
// caller must order as 1 <= port1 < port2 <= Ports. Anything else is
// a caller error and yields nil.
//
// The pair (p1,p2) lives at a triangular offset: the pairs starting
// at port 1 occupy the first Ports-1 slots, those starting at port 2
// the next Ports-2, and so on.
func (cs *CoefficientSet) Through(port1, port2 int) *Coefficient {
	if port1 < 1 || port1 >= port2 || port2 > cs.Ports {
		return nil
	}
	index := port2 - port1 - 1
	for k := 1; k < port1; k++ {
		index += cs.Ports - k
	}
	if index >= len(cs.Throughs) {
		return nil
	}
	return &cs.Throughs[index]
}

// coefficientStore owns the retrieved coefficient sets. The retrieval
// task builds a complete replacement slice and swaps it in under the
// write lock, so readers see either the old collection or the new one
// in full, never a mix.
type coefficientStore struct {
	mu   sync.RWMutex
	sets []CoefficientSet
}

func (s *coefficientStore) snapshot() []CoefficientSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CoefficientSet, len(s.sets))
	copy(out, s.sets)
	return out
}

func (s *coefficientStore) replace(sets []CoefficientSet) {
	s.mu.Lock()
	s.sets = sets
	s.mu.Unlock()
}

func (s *coefficientStore) hasModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sets {
		set := &s.sets[i]
		for _, group := range [][]Coefficient{set.Opens, set.Shorts, set.Loads, set.Throughs} {
			for j := range group {
				if group[j].Modified {
					return true
				}
			}
		}
	}
	return false
}
