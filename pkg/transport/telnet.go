package transport

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ziutek/telnet"
)

const telnetReadBuffer = 4096

// telnetTransport drives a device over Telnet. Login is completed during
// Connect; afterwards the transport is a plain byte stream.
type telnetTransport struct {
	conn        *telnet.Conn
	idleTimeout time.Duration
}

// NewTelnet dials addr ("host:port") and walks the username/password login
// sequence before handing the stream over to the session layer.
func NewTelnet(addr, username, password string, timeout time.Duration) (Transport, error) {
	conn, err := telnet.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "telnet dial %s failed", addr)
	}

	t := &telnetTransport{conn: conn, idleTimeout: timeout}

	// "Username:" / "Password:" matched without the leading letter so both
	// capitalizations pass.
	login := []struct {
		waitFor string
		send    string
	}{
		{"sername:", username},
		{"assword:", password},
	}
	for _, step := range login {
		if _, err := t.readUntil(step.waitFor); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "telnet login: waiting for %q", step.waitFor)
		}
		if _, err := t.Write([]byte(step.send + "\n")); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "telnet login: send failed")
		}
	}

	// Login done: drop the read deadline. The session layer owns command
	// timeouts from here on, and a deadline would kill its reader goroutine
	// whenever the device goes quiet.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "telnet: clearing read deadline")
	}

	return t, nil
}

// readUntil reads from the connection until pattern appears in the
// accumulated output or the idle timeout elapses.
func (t *telnetTransport) readUntil(pattern string) (string, error) {
	buf := make([]byte, telnetReadBuffer)
	var output strings.Builder
	deadline := time.Now().Add(t.idleTimeout)
	for time.Now().Before(deadline) {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.idleTimeout)); err != nil {
			return output.String(), err
		}
		n, err := t.conn.Read(buf)
		if err != nil {
			return output.String(), err
		}
		if n > 0 {
			output.Write(buf[:n])
			if strings.Contains(output.String(), pattern) {
				return output.String(), nil
			}
		}
	}
	return output.String(), errors.Errorf("timeout waiting for %q", pattern)
}

func (t *telnetTransport) Read(p []byte) (int, error) {
	return t.conn.Read(p)
}

func (t *telnetTransport) Write(p []byte) (int, error) {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.idleTimeout)); err != nil {
		return 0, err
	}
	return t.conn.Write(p)
}

func (t *telnetTransport) Close() error {
	return t.conn.Close()
}
