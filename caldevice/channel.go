package caldevice

import "sync"

// Channel is the request/response primitive the device client runs
// on. Implementations wrap a single logical connection (USB CDC
// serial port, TCP bridge, test script); the wire protocol carries no
// request identifiers, so a response is correlated to its request
// purely by arrival order. One exchange at a time.
type Channel interface {
	// Query sends a command and returns the single-line response.
	Query(cmd string) (string, error)

	// Cmd sends a command that is answered by an acknowledgement
	// and reports whether the device accepted it.
	Cmd(cmd string) bool
}

// SerializedChannel wraps a Channel so that concurrent callers never
// interleave exchanges. Every Query/Cmd pair runs under the same
// mutex; a caller that sneaks in between two of another caller's
// exchanges still sees a coherent request/response pairing.
type SerializedChannel struct {
	mu sync.Mutex
	ch Channel
}

// Serialize wraps ch. If ch is already a SerializedChannel it is
// returned unchanged.
func Serialize(ch Channel) *SerializedChannel {
	if sc, ok := ch.(*SerializedChannel); ok {
		return sc
	}
	return &SerializedChannel{ch: ch}
}

func (s *SerializedChannel) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Query(cmd)
}

func (s *SerializedChannel) Cmd(cmd string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Cmd(cmd)
}
