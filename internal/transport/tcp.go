package transport

import (
	"fmt"
	"net"
	"time"
)

// Dial connects to a network-bridged device at addr (host:port).
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return newConn(conn, timeout, conn.SetReadDeadline), nil
}

// FromNetConn wraps an already established connection. Used by tests
// and by callers that dial themselves (SSH tunnels, net.Pipe).
func FromNetConn(conn net.Conn, timeout time.Duration) *Conn {
	return newConn(conn, timeout, conn.SetReadDeadline)
}
