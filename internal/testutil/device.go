// Package testutil provides a scripted fake device for transport and session
// tests. The script is an ordered list of exchanges: wait for a line, write a
// response. It stands in for a real switch CLI on the other end of a pipe or
// TCP connection.
package testutil

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
)

// Exchange is one step of a device script. When Expect is empty the Respond
// text is written unprompted (banners, initial prompt).
type Exchange struct {
	// Expect is the exact line (after trimming CR and whitespace) the device
	// waits for before responding.
	Expect string
	// Respond is written verbatim. Prompts are written without a trailing
	// newline, the way real devices present them.
	Respond string
}

// RunScript plays the script against rw. It returns when the script is
// exhausted or the peer goes away. Unexpected input fails the test.
func RunScript(t *testing.T, rw io.ReadWriter, script []Exchange) {
	t.Helper()
	reader := bufio.NewReader(rw)
	for _, ex := range script {
		if ex.Expect != "" {
			line, err := readLine(reader)
			if err != nil {
				return // peer closed
			}
			if line != ex.Expect {
				t.Errorf("scripted device: got line %q, want %q", line, ex.Expect)
				return
			}
		}
		if ex.Respond != "" {
			if _, err := rw.Write([]byte(ex.Respond)); err != nil {
				return
			}
		}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Serve listens on a loopback port and plays the script against the first
// connection. Returns the address to dial. The listener is torn down via
// t.Cleanup.
func Serve(t *testing.T, script []Exchange) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testutil: listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		RunScript(t, conn, script)
		// Keep the connection open until the client hangs up, so the session
		// reader does not see EOF mid-test.
		_, _ = io.Copy(io.Discard, conn)
	}()

	return ln.Addr().String()
}
