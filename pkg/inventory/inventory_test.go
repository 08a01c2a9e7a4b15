package inventory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/confpush/confpush/pkg/util"
)

func TestParseOSType(t *testing.T) {
	tests := []struct {
		in   string
		want OSType
	}{
		{"cisco_ios", CiscoIOS},
		{"cisco", CiscoIOS}, // legacy alias
		{"CISCO_IOS", CiscoIOS},
		{" juniper ", Juniper},
		{"cisco_ios_telnet", CiscoIOSTelnet},
		{"cisco_asa", CiscoASA},
	}
	for _, tt := range tests {
		got, err := ParseOSType(tt.in)
		if err != nil {
			t.Errorf("ParseOSType(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOSType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOSType_Unknown(t *testing.T) {
	_, err := ParseOSType("arista_eos")
	if err == nil {
		t.Fatal("ParseOSType should reject unknown platforms")
	}
	if !errors.Is(err, util.ErrUnknownOSType) {
		t.Errorf("error = %v, want ErrUnknownOSType", err)
	}
}

func TestSplitCommands(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"multiline", "interface Gi0/1\n description uplink\n no shutdown", []string{"interface Gi0/1", "description uplink", "no shutdown"}},
		{"crlf", "snmp-server community public ro\r\nntp server 10.0.0.1\r\n", []string{"snmp-server community public ro", "ntp server 10.0.0.1"}},
		{"blank lines dropped", "\nshow version\n\n", []string{"show version"}},
		{"empty cell", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitCommands(tt.cell); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCommands(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestJobFromRow_SkipsBlankName(t *testing.T) {
	job, err := jobFromRow("devices.csv", 4, []string{"", "cisco_ios", "ntp server 10.0.0.1", "no ntp server 10.0.0.1", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job != nil {
		t.Errorf("blank-name row should be skipped, got %+v", job)
	}
}

func TestJobFromRow_ShortRow(t *testing.T) {
	// Trailing cells omitted by the exporter: rollback and verification empty.
	job, err := jobFromRow("devices.csv", 2, []string{"edge1", "cisco_ios", "ntp server 10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job == nil {
		t.Fatal("expected a job")
	}
	if len(job.RollbackCmds) != 0 || len(job.VerificationCmds) != 0 {
		t.Errorf("omitted cells should yield empty command sets: %+v", job)
	}
}

func TestJobFromRow_MissingOSType(t *testing.T) {
	_, err := jobFromRow("devices.csv", 2, []string{"edge1", "", "ntp server 10.0.0.1", "", ""})
	if !errors.Is(err, util.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("devices.txt")
	if !errors.Is(err, util.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}
