package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/confpush/confpush/pkg/util"
)

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell ref: %v", err)
			}
			if err := f.SetCellStr(sheet, ref, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "devices.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture: %v", err)
	}
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"DeviceName", "OS_Type", "Implementation_Cmds", "Rollback_Cmds", "Verification_Cmds"},
		{"edge1-sea", "cisco_ios", "ntp server 10.0.0.1\nntp server 10.0.0.2", "no ntp server 10.0.0.1", "show ntp status"},
		{"core1-sea", "juniper", "set system ntp server 10.0.0.1", "delete system ntp server 10.0.0.1", ""},
	})

	jobs, err := LoadXLSX(path)
	if err != nil {
		t.Fatalf("LoadXLSX() failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Name != "edge1-sea" || jobs[1].Name != "core1-sea" {
		t.Errorf("row order not preserved: %v, %v", jobs[0].Name, jobs[1].Name)
	}
	if len(jobs[0].ImplementationCmds) != 2 {
		t.Errorf("multiline cell not split: %v", jobs[0].ImplementationCmds)
	}
	if jobs[1].OSType != Juniper {
		t.Errorf("OSType = %q, want juniper", jobs[1].OSType)
	}
}

func TestLoadXLSX_UnknownOSType(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"DeviceName", "OS_Type", "Implementation_Cmds", "Rollback_Cmds", "Verification_Cmds"},
		{"edge1", "vyos", "show version", "", ""},
	})

	_, err := LoadXLSX(path)
	if !errors.Is(err, util.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestLoadXLSX_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.xlsx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	_, err := LoadXLSX(path)
	if !errors.Is(err, util.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}
