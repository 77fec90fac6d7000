package transport

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// lineResponder answers each received line with the next canned
// response over the server end of a net.Pipe.
func lineResponder(t *testing.T, conn net.Conn, responses []string) chan []string {
	t.Helper()
	received := make(chan []string, 1)
	go func() {
		var lines []string
		reader := bufio.NewReader(conn)
		for _, resp := range responses {
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			lines = append(lines, line)
			conn.Write([]byte(resp))
		}
		received <- lines
	}()
	return received
}

func TestQueryFraming(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	received := lineResponder(t, server, []string{"LibreCAL_SN42\r\n"})

	c := FromNetConn(client, time.Second)
	resp, err := c.Query("*IDN?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp != "LibreCAL_SN42" {
		t.Errorf("response %q", resp)
	}

	lines := <-received
	if len(lines) != 1 || lines[0] != "*IDN?\n" {
		t.Errorf("sent %q, want terminated command", lines)
	}
}

func TestQueryTrimsBareLF(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	lineResponder(t, server, []string{"23.5\n"})

	c := FromNetConn(client, time.Second)
	resp, err := c.Query(":TEMP?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp != "23.5" {
		t.Errorf("response %q", resp)
	}
}

func TestCmdAcknowledgement(t *testing.T) {
	cases := []struct {
		response string
		want     bool
	}{
		{"\r\n", true},
		{"OK\r\n", true},
		{"ERROR\r\n", false},
		{"ERROR bad port\r\n", false},
	}
	for _, cse := range cases {
		client, server := net.Pipe()
		lineResponder(t, server, []string{cse.response})

		c := FromNetConn(client, time.Second)
		if got := c.Cmd(":PORT 1 OPEN"); got != cse.want {
			t.Errorf("Cmd with response %q = %v, want %v", cse.response, got, cse.want)
		}
		client.Close()
		server.Close()
	}
}

func TestQueryTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// server never answers
	go func() {
		buf := make([]byte, 64)
		server.Read(buf)
	}()

	c := FromNetConn(client, 50*time.Millisecond)
	if _, err := c.Query("*IDN?"); err == nil {
		t.Fatal("expected timeout error")
	}
}
