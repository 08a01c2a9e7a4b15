// Package credentials resolves the login identity used for every device in a
// run. One credential set per run: the import file carries no per-device
// credentials.
package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"golang.org/x/term"
)

// PasswordEnv names the environment variable consulted before prompting.
// Set it for unattended runs.
const PasswordEnv = "CONFPUSH_PASSWORD"

// Credentials is the login identity for device access.
type Credentials struct {
	Username     string
	Password     string
	EnableSecret string
}

// Resolve builds the run credentials. Username falls back to the invoking OS
// user; the password comes from PasswordEnv or an interactive no-echo prompt;
// the enable secret defaults to the login password.
func Resolve(username, enableSecret string) (Credentials, error) {
	c := Credentials{Username: username}

	if c.Username == "" {
		u, err := user.Current()
		if err != nil {
			return c, fmt.Errorf("determining current user: %w", err)
		}
		c.Username = u.Username
	}

	c.Password = os.Getenv(PasswordEnv)
	if c.Password == "" {
		pw, err := promptPassword(os.Stdin, os.Stderr)
		if err != nil {
			return c, fmt.Errorf("reading password: %w", err)
		}
		c.Password = pw
	}

	c.EnableSecret = enableSecret
	if c.EnableSecret == "" {
		c.EnableSecret = c.Password
	}

	return c, nil
}

// promptPassword reads a password from in without echo when in is a
// terminal, falling back to a plain line read for pipes.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
