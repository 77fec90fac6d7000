// Package transport provides line-oriented command channels to a
// LibreCAL device: the USB CDC serial port it normally presents, or a
// TCP bridge for network-attached setups. Both speak the same
// framing: commands terminated by '\n', responses a single line with
// trailing CR/LF stripped.
package transport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single exchange.
const DefaultTimeout = 2 * time.Second

// Conn is a line-framed channel over any byte stream. It implements
// caldevice.Channel. The mutex keeps a Query's write and read
// together; callers wanting cross-call ordering wrap it in
// caldevice.Serialize.
type Conn struct {
	mu      sync.Mutex
	rw      io.ReadWriteCloser
	reader  *bufio.Reader
	timeout time.Duration

	// deadline arms a read deadline before each exchange, when the
	// underlying stream supports one (TCP does, serial ports set a
	// static timeout at open instead).
	deadline func(time.Time) error
}

func newConn(rw io.ReadWriteCloser, timeout time.Duration, deadline func(time.Time) error) *Conn {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Conn{
		rw:       rw,
		reader:   bufio.NewReader(rw),
		timeout:  timeout,
		deadline: deadline,
	}
}

// Query sends one command and returns the response line with
// surrounding whitespace and line endings trimmed.
func (c *Conn) Query(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deadline != nil {
		_ = c.deadline(time.Now().Add(c.timeout))
	}
	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}
	if _, err := io.WriteString(c.rw, cmd); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Cmd sends a command and interprets the acknowledgement line: any
// response not starting with ERROR counts as accepted.
func (c *Conn) Cmd(cmd string) bool {
	resp, err := c.Query(cmd)
	return err == nil && !strings.HasPrefix(resp, "ERROR")
}

func (c *Conn) Close() error {
	return c.rw.Close()
}
