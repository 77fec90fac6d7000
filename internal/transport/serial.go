package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the device's CDC-ACM interface. The USB
// stack ignores the setting, but the serial layer wants one.
const DefaultBaudRate = 115200

// OpenSerial opens the device's virtual serial port, e.g.
// /dev/ttyACM0 or COM5.
func OpenSerial(port string, baud int, timeout time.Duration) (*Conn, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return newConn(p, timeout, nil), nil
}

// ListSerialPorts enumerates candidate serial ports on this host.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
