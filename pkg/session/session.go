// Package session drives an interactive device CLI over a transport: it
// tracks the device prompt and frames command responses by reading until the
// prompt returns.
package session

import (
	"bytes"
	"io"
	"regexp"
	"sync"
	"time"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"github.com/confpush/confpush/pkg/transport"
)

// SendOption modifies the behaviour of a single Send.
type SendOption func(*sendConfig)

// WaitFor overrides the response sentinel for this Send: reading stops when a
// line matches the given regex instead of the current prompt.
func WaitFor(sentinel string) SendOption {
	return func(c *sendConfig) {
		c.sentinel = sentinel
	}
}

// ResetPrompt re-captures the prompt after the send. Use for commands that
// change it (enable, entering or leaving configuration mode).
func ResetPrompt() SendOption {
	return func(c *sendConfig) {
		c.resetPrompt = true
	}
}

// NoWait sends without waiting for any response.
func NoWait() SendOption {
	return func(c *sendConfig) {
		c.noResponse = true
	}
}

type sendConfig struct {
	resetPrompt bool
	noResponse  bool
	sentinel    string
}

// Session is an expect-style conversation with a device CLI.
type Session struct {
	cfg   Config
	tport transport.Transport

	// promptPattern frames responses: reading stops when the last
	// unterminated line matches it.
	promptPattern *regexp.Regexp
	// prompt is the literal prompt text when auto-detected, "" otherwise.
	prompt string

	// inputs queues reads from the device; closed when the reader exits.
	inputs chan []byte
	// done unblocks a reader stuck handing off input nobody is waiting for.
	done      chan struct{}
	closeOnce sync.Once
}

// New captures the device prompt on the supplied transport and runs the
// configured init commands. The caller keeps ownership of the transport only
// on error; after success Close releases it.
func New(tport transport.Transport, cfg *Config) (*Session, error) {
	resolved := Config{}
	if cfg != nil {
		resolved = *cfg
	}
	_ = mergo.Merge(&resolved, DefaultConfig)

	s := &Session{
		cfg:    resolved,
		tport:  tport,
		inputs: make(chan []byte),
		done:   make(chan struct{}),
	}

	if resolved.PromptPattern != "" {
		pattern, err := regexp.Compile(resolved.PromptPattern)
		if err != nil {
			return nil, errors.Wrap(err, "invalid prompt pattern")
		}
		s.promptPattern = pattern
	}

	s.launchReader()

	if s.promptPattern == nil {
		if err := s.capturePrompt(); err != nil {
			return nil, errors.Wrap(err, "failed to capture device prompt")
		}
	} else {
		// Swallow the banner up to the first prompt.
		if _, err := s.readUntilMatch(s.promptPattern); err != nil {
			return nil, errors.Wrap(err, "failed to reach device prompt")
		}
	}

	for _, cmd := range resolved.InitCmds {
		if _, err := s.Send(cmd); err != nil {
			return nil, errors.Wrapf(err, "init command %q failed", cmd)
		}
	}

	return s, nil
}

// Prompt returns the auto-detected prompt text. Empty when an explicit
// PromptPattern was configured.
func (s *Session) Prompt() string {
	return s.prompt
}

// Send writes value to the device and returns the response up to (but not
// including) the prompt line.
func (s *Session) Send(value string, opts ...SendOption) (string, error) {
	config := &sendConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if !config.noResponse && !config.resetPrompt && s.promptPattern == nil && config.sentinel == "" {
		return "", errors.New("no prompt known: use WaitFor or ResetPrompt")
	}

	var sentinel *regexp.Regexp
	if config.sentinel != "" {
		var err error
		sentinel, err = regexp.Compile(config.sentinel)
		if err != nil {
			return "", errors.Wrap(err, "invalid WaitFor pattern")
		}
	}

	if _, err := s.tport.Write([]byte(value + "\n")); err != nil {
		return "", errors.Wrap(err, "failed to send command")
	}

	if config.noResponse {
		return "", nil
	}

	if config.resetPrompt {
		return "", s.capturePrompt()
	}

	if sentinel == nil {
		sentinel = s.promptPattern
	}
	return s.readUntilMatch(sentinel)
}

// Close releases the underlying transport and stops the reader goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.tport.Close()
}

// capturePrompt reads until the device goes quiet, then takes the last
// unterminated line as the prompt.
func (s *Session) capturePrompt() error {
	b, err := s.readUntilQuiet()
	if err != nil {
		return err
	}
	b = normalizeNewlines(b)
	pbytes := b[bytes.LastIndexByte(b, '\n')+1:]
	if len(bytes.TrimSpace(pbytes)) == 0 {
		return errors.New("device did not present a prompt")
	}
	s.prompt = string(pbytes)
	s.promptPattern = regexp.MustCompile(regexp.QuoteMeta(s.prompt) + `\s*$`)
	return nil
}

// readUntilQuiet accumulates input until no data arrives for PromptTimeout.
func (s *Session) readUntilQuiet() ([]byte, error) {
	output := new(bytes.Buffer)
	for {
		select {
		case rd := <-s.inputs:
			if rd == nil {
				return nil, io.EOF
			}
			_, _ = output.Write(rd)
		case <-time.After(s.cfg.PromptTimeout):
			return output.Bytes(), nil
		}
	}
}

// readUntilMatch reads until the last unterminated line matches sentinel and
// returns everything before that line, newlines normalized to \n.
func (s *Session) readUntilMatch(sentinel *regexp.Regexp) (string, error) {
	output := new(bytes.Buffer)
	deadline := time.NewTimer(s.cfg.CommandTimeout)
	defer deadline.Stop()
	for {
		select {
		case b := <-s.inputs:
			if b == nil {
				return "", io.EOF
			}
			output.Write(b)
			normalized := normalizeNewlines(output.Bytes())
			lastNl := bytes.LastIndexByte(normalized, '\n')
			lastLine := normalized
			if lastNl >= 0 {
				lastLine = normalized[lastNl+1:]
			} else {
				lastNl = 0
			}
			if sentinel.Match(lastLine) {
				return string(normalized[:lastNl]), nil
			}
		case <-deadline.C:
			return output.String(), errors.Errorf("timed out waiting for %q", sentinel)
		}
	}
}

func normalizeNewlines(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}

func (s *Session) launchReader() {
	go func() {
		defer close(s.inputs)
		for {
			const bufLength = 10000
			buf := make([]byte, bufLength)
			n, err := s.tport.Read(buf)
			if err != nil {
				return
			}
			// Closing the transport does not unblock a pending channel
			// send, so a closed session must release the reader here.
			select {
			case s.inputs <- buf[:n]:
			case <-s.done:
				return
			}
		}
	}()
}
