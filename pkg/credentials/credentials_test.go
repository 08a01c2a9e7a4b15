package credentials

import (
	"os/user"
	"testing"
)

func TestResolve_UsernameDefaultsToOSUser(t *testing.T) {
	t.Setenv(PasswordEnv, "hunter2")

	c, err := Resolve("", "")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	u, err := user.Current()
	if err != nil {
		t.Skipf("cannot determine current user: %v", err)
	}
	if c.Username != u.Username {
		t.Errorf("Username = %q, want current OS user %q", c.Username, u.Username)
	}
}

func TestResolve_ExplicitUsernameWins(t *testing.T) {
	t.Setenv(PasswordEnv, "hunter2")

	c, err := Resolve("netops", "")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if c.Username != "netops" {
		t.Errorf("Username = %q, want netops", c.Username)
	}
}

func TestResolve_EnableSecretDefaultsToPassword(t *testing.T) {
	t.Setenv(PasswordEnv, "hunter2")

	c, err := Resolve("netops", "")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if c.EnableSecret != "hunter2" {
		t.Errorf("EnableSecret = %q, want login password", c.EnableSecret)
	}

	c, err = Resolve("netops", "s3cret")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if c.EnableSecret != "s3cret" {
		t.Errorf("EnableSecret = %q, want explicit override", c.EnableSecret)
	}
}
