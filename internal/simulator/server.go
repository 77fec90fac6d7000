package simulator

import (
	"bufio"
	"errors"
	"net"

	"github.com/EhsanBagheri/LibreCAL/internal/logging"
)

// Serve accepts clients on l and answers protocol commands until the
// listener is closed. Each connection gets its own goroutine; the
// dispatcher itself is locked per command, so clients can share the
// simulated device state.
func (s *Simulator) Serve(l net.Listener, log logging.Logger) error {
	if log == nil {
		log = logging.Default()
	}
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		log.Info("client connected", logging.Field{Key: "remote", Value: conn.RemoteAddr().String()})
		go s.serveConn(conn, log)
	}
}

func (s *Simulator) serveConn(conn net.Conn, log logging.Logger) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		resp := s.Dispatch(scanner.Text())
		if _, err := conn.Write([]byte(resp + "\r\n")); err != nil {
			log.Warn("write response failed", logging.Field{Key: "err", Value: err})
			return
		}
	}
	log.Info("client disconnected", logging.Field{Key: "remote", Value: conn.RemoteAddr().String()})
}
