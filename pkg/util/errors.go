// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the major failure classes. Callers match with errors.Is.
var (
	ErrParse         = errors.New("import file parse failed")
	ErrUnknownOSType = errors.New("unrecognized os_type")
	ErrConnect       = errors.New("device connection failed")
	ErrCommand       = errors.New("command rejected by device")
)

// ParseError reports a malformed import file. Load-time only; a ParseError
// means no device has been contacted.
type ParseError struct {
	File   string
	Row    int // 1-based spreadsheet row, 0 if not row-specific
	Reason string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: %s", e.File, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a parse error for a specific row
func NewParseError(file string, row int, format string, args ...interface{}) *ParseError {
	return &ParseError{File: file, Row: row, Reason: fmt.Sprintf(format, args...)}
}

// ConnectError reports a failed connection attempt to a single device.
// Per-device: the batch continues with the next row.
type ConnectError struct {
	Device string
	Addr   string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s (%s): %v", e.Device, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return ErrConnect
}

// CommandError reports a command the device rejected. The offending command
// and the device output are retained for the run log.
type CommandError struct {
	Device  string
	Command string
	Output  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("device %s rejected %q", e.Device, e.Command)
}

func (e *CommandError) Unwrap() error {
	return ErrCommand
}
