// Package switching models the firmware-side RF switch: one standard
// per port, set unconditionally by the command dispatcher, with a
// validity predicate over the whole configuration.
package switching

import (
	"sync"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
)

// Policy decides whether a combination of per-port standards is
// electrically consistent. The slice is indexed by port-1.
type Policy func(standards []caldevice.Standard) bool

// DefaultPolicy rejects configurations with an odd number of ports
// set to Through: a through path needs both of its ends switched in.
// Hardware revisions with stricter constraints install their own
// policy via WithPolicy.
func DefaultPolicy(standards []caldevice.Standard) bool {
	throughs := 0
	for _, s := range standards {
		if s == caldevice.Through {
			throughs++
		}
	}
	return throughs%2 == 0
}

// Controller holds the switch state for an N-port device. All ports
// start at None.
type Controller struct {
	mu        sync.Mutex
	standards []caldevice.Standard
	policy    Policy
}

// NewController returns a controller for ports ports using
// DefaultPolicy.
func NewController(ports int) *Controller {
	c := &Controller{
		standards: make([]caldevice.Standard, ports),
		policy:    DefaultPolicy,
	}
	for i := range c.standards {
		c.standards[i] = caldevice.None
	}
	return c
}

// WithPolicy replaces the validity predicate and returns c.
func (c *Controller) WithPolicy(p Policy) *Controller {
	c.mu.Lock()
	c.policy = p
	c.mu.Unlock()
	return c
}

func (c *Controller) Ports() int { return len(c.standards) }

// SetStandard switches port (1-based) to s. Out-of-range ports are
// rejected; there is no cross-port validation at set time, the
// combination is only judged by Valid.
func (c *Controller) SetStandard(port int, s caldevice.Standard) bool {
	if port < 1 || port > len(c.standards) {
		return false
	}
	c.mu.Lock()
	c.standards[port-1] = s
	c.mu.Unlock()
	return true
}

// GetStandard returns the standard at port, or None for an
// out-of-range port.
func (c *Controller) GetStandard(port int) caldevice.Standard {
	if port < 1 || port > len(c.standards) {
		return caldevice.None
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.standards[port-1]
}

// Valid reports whether the current combination of standards passes
// the configured policy.
func (c *Controller) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]caldevice.Standard, len(c.standards))
	copy(snapshot, c.standards)
	return c.policy(snapshot)
}
