package transport

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

type sshTransport struct {
	client  *ssh.Client
	session *ssh.Session
	io.Reader
	io.WriteCloser
}

// SSHClientConfig builds a password-auth client config. Network devices
// frequently present password auth as keyboard-interactive, so both methods
// are offered.
func SSHClientConfig(user, pass string, timeout time.Duration) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = pass
				}
				return answers, nil
			}),
		},
		// Batch tool driven from an operator workstation; host keys for
		// hundreds of devices are not practically distributable here.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
}

// NewSSH dials addr ("host:port"), requests a dumb PTY and starts a login
// shell, returning the shell's byte stream.
func NewSSH(addr string, cfg *ssh.ClientConfig) (Transport, error) {
	t := &sshTransport{}

	var err error
	t.client, err = ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "ssh dial failed")
	}

	t.session, err = t.client.NewSession()
	if err != nil {
		t.Close()
		return nil, errors.Wrap(err, "new ssh session failed")
	}

	t.Reader, _ = t.session.StdoutPipe()
	t.WriteCloser, _ = t.session.StdinPipe()

	terminalModes := ssh.TerminalModes{
		ssh.ECHO: 0,
	}
	if err = t.session.RequestPty("dumb", 80, 80, terminalModes); err != nil {
		t.Close()
		return nil, errors.Wrap(err, "request pty failed")
	}

	if err = t.session.Shell(); err != nil {
		t.Close()
		return nil, errors.Wrap(err, "login shell failed")
	}

	return t, nil
}

func (t *sshTransport) Close() error {
	if t.WriteCloser != nil {
		_ = t.WriteCloser.Close()
	}
	if t.session != nil {
		_ = t.session.Close()
	}
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
