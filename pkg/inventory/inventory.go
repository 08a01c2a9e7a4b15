// Package inventory loads device change jobs from a spreadsheet import file.
//
// The import file carries one device per data row, columns A-E:
//
//	| DeviceName | OS_Type   | Implementation_Cmds | Rollback_Cmds | Verification_Cmds |
//	| edge1-sea  | cisco_ios | commands to run     | rollback cmds | show commands     |
//
// Command cells hold one command per line. The first row is treated as a
// header and skipped; rows with an empty DeviceName cell are skipped.
package inventory

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/confpush/confpush/pkg/util"
)

// OSType identifies the device platform family. It determines the command
// dialect and the management transport used to reach the device.
type OSType string

const (
	CiscoIOS       OSType = "cisco_ios"
	CiscoIOSTelnet OSType = "cisco_ios_telnet"
	Juniper        OSType = "juniper"
	CiscoASA       OSType = "cisco_asa"
)

// ParseOSType normalizes and validates an OS_Type cell value.
// The legacy spelling "cisco" is accepted as an alias for cisco_ios.
func ParseOSType(s string) (OSType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cisco", "cisco_ios":
		return CiscoIOS, nil
	case "cisco_ios_telnet":
		return CiscoIOSTelnet, nil
	case "juniper":
		return Juniper, nil
	case "cisco_asa":
		return CiscoASA, nil
	default:
		return "", fmt.Errorf("%w: %q", util.ErrUnknownOSType, strings.TrimSpace(s))
	}
}

// DeviceJob is one spreadsheet row: a device plus the command sets to run
// against it. Constructed once at load time, consumed once by the runner.
type DeviceJob struct {
	Name               string
	OSType             OSType
	ImplementationCmds []string
	RollbackCmds       []string
	VerificationCmds   []string
}

// Host returns the address the device is reached at. The import format has
// no separate host column; the device name is expected to resolve.
func (j *DeviceJob) Host() string {
	return j.Name
}

// Load reads the import file at path, dispatching on file extension.
// Returns a ParseError for unsupported extensions or malformed content.
func Load(path string) ([]DeviceJob, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return nil, &util.ParseError{File: path, Reason: "unsupported import file type (want .csv or .xlsx)"}
	}
}

// SplitCommands splits a command cell into individual commands, one per line.
// Blank lines are dropped; CRLF line endings are tolerated.
func SplitCommands(cell string) []string {
	var cmds []string
	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			cmds = append(cmds, line)
		}
	}
	return cmds
}

// jobFromRow builds a DeviceJob from one data row. Returns (nil, nil) for
// rows that should be skipped (empty DeviceName). rowNum is 1-based.
func jobFromRow(file string, rowNum int, cells []string) (*DeviceJob, error) {
	// Pad short rows so trailing empty cells (common in spreadsheet exports)
	// do not look like missing columns.
	for len(cells) < 5 {
		cells = append(cells, "")
	}

	name := strings.TrimSpace(cells[0])
	if name == "" {
		return nil, nil
	}

	if strings.TrimSpace(cells[1]) == "" {
		return nil, util.NewParseError(file, rowNum, "device %s: missing OS_Type", name)
	}
	osType, err := ParseOSType(cells[1])
	if err != nil {
		return nil, util.NewParseError(file, rowNum, "device %s: %v", name, err)
	}

	job := &DeviceJob{
		Name:               name,
		OSType:             osType,
		ImplementationCmds: SplitCommands(cells[2]),
		RollbackCmds:       SplitCommands(cells[3]),
		VerificationCmds:   SplitCommands(cells[4]),
	}
	if len(job.ImplementationCmds) == 0 {
		return nil, util.NewParseError(file, rowNum, "device %s: no implementation commands", name)
	}
	return job, nil
}
