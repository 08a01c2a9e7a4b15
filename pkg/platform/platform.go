// Package platform describes the command dialect of each supported device
// platform: how to reach it, how to enter and leave configuration mode, and
// how to persist the running configuration.
package platform

import (
	"fmt"
	"strings"

	"github.com/confpush/confpush/pkg/inventory"
	"github.com/confpush/confpush/pkg/util"
)

// Transport selects the management protocol for a platform.
type Transport string

const (
	TransportSSH    Transport = "ssh"
	TransportTelnet Transport = "telnet"
)

// Dialect captures the per-platform command conversation.
type Dialect struct {
	OSType      inventory.OSType
	Transport   Transport
	DefaultPort int

	// EnableCmd escalates to privileged mode. Empty when the platform has no
	// enable concept (Junos drops straight into operational mode).
	EnableCmd string

	// InitCmds run right after login, before any configuration command.
	// Typically paging suppression so long output does not stall the session.
	InitCmds []string

	ConfigEnterCmd string
	ConfigExitCmd  string

	// PromptPattern loosely matches any prompt the platform presents.
	// Configuration submodes rewrite the prompt (for example
	// "(config-if)#"), so exact-prompt framing cannot be used there.
	PromptPattern string

	// SaveCmd persists the running config. When SaveInConfigMode is true the
	// command must be issued inside configuration mode, before ConfigExitCmd:
	// leaving with an uncommitted candidate triggers an interactive
	// confirmation question (Junos "Exit with uncommitted changes?").
	SaveCmd          string
	SaveInConfigMode bool

	// DiscardCmd throws away an unsaved candidate so config mode can be left
	// cleanly. Only set when SaveInConfigMode is true.
	DiscardCmd string

	// RunCmdPrefix runs an operational command from inside config mode
	// (Junos "run "). Used when verification must happen before the
	// commit-or-discard decision.
	RunCmdPrefix string

	// LogoutCmd ends the CLI session before the transport is torn down.
	LogoutCmd string

	// ErrorMarkers are substrings in command output that indicate the device
	// rejected the command.
	ErrorMarkers []string
}

var dialects = map[inventory.OSType]Dialect{
	inventory.CiscoIOS: {
		OSType:         inventory.CiscoIOS,
		Transport:      TransportSSH,
		DefaultPort:    22,
		EnableCmd:      "enable",
		InitCmds:       []string{"terminal length 0"},
		ConfigEnterCmd: "configure terminal",
		ConfigExitCmd:  "end",
		PromptPattern:  ciscoPromptPattern,
		SaveCmd:        "write memory",
		LogoutCmd:      "exit",
		ErrorMarkers:   ciscoErrorMarkers,
	},
	inventory.CiscoIOSTelnet: {
		OSType:         inventory.CiscoIOSTelnet,
		Transport:      TransportTelnet,
		DefaultPort:    23,
		EnableCmd:      "enable",
		InitCmds:       []string{"terminal length 0"},
		ConfigEnterCmd: "configure terminal",
		ConfigExitCmd:  "end",
		PromptPattern:  ciscoPromptPattern,
		SaveCmd:        "write memory",
		LogoutCmd:      "exit",
		ErrorMarkers:   ciscoErrorMarkers,
	},
	inventory.CiscoASA: {
		OSType:         inventory.CiscoASA,
		Transport:      TransportSSH,
		DefaultPort:    22,
		EnableCmd:      "enable",
		InitCmds:       []string{"terminal pager 0"},
		ConfigEnterCmd: "configure terminal",
		ConfigExitCmd:  "end",
		PromptPattern:  ciscoPromptPattern,
		SaveCmd:        "write memory",
		LogoutCmd:      "exit",
		ErrorMarkers:   ciscoErrorMarkers,
	},
	inventory.Juniper: {
		OSType:           inventory.Juniper,
		Transport:        TransportSSH,
		DefaultPort:      22,
		InitCmds:         []string{"set cli screen-length 0"},
		ConfigEnterCmd:   "configure",
		ConfigExitCmd:    "exit configuration-mode",
		PromptPattern:    junosPromptPattern,
		SaveCmd:          "commit",
		SaveInConfigMode: true,
		DiscardCmd:       "rollback 0",
		RunCmdPrefix:     "run ",
		LogoutCmd:        "exit",
		ErrorMarkers:     []string{"syntax error", "unknown command", "error:", "missing argument"},
	},
}

const (
	ciscoPromptPattern = `[>#]\s*$`
	junosPromptPattern = `[>#%]\s*$`
)

var ciscoErrorMarkers = []string{
	"% Invalid input",
	"% Incomplete command",
	"% Ambiguous command",
	"% Error",
	"ERROR:",
}

// ForOSType returns the dialect for a platform family.
func ForOSType(t inventory.OSType) (*Dialect, error) {
	d, ok := dialects[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownOSType, t)
	}
	return &d, nil
}

// RejectedCommand reports whether output contains one of the dialect's error
// markers, meaning the device refused the command.
func (d *Dialect) RejectedCommand(output string) bool {
	for _, marker := range d.ErrorMarkers {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}
