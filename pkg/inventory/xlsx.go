package inventory

import (
	"github.com/xuri/excelize/v2"

	"github.com/confpush/confpush/pkg/util"
)

// LoadXLSX reads DeviceJobs from the first sheet of an Excel workbook.
func LoadXLSX(path string) ([]DeviceJob, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &util.ParseError{File: path, Reason: err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &util.ParseError{File: path, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &util.ParseError{File: path, Reason: err.Error()}
	}

	var jobs []DeviceJob
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		job, err := jobFromRow(path, i+1, row)
		if err != nil {
			return nil, err
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}
