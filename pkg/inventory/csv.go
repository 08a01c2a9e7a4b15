package inventory

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/confpush/confpush/pkg/util"
)

// LoadCSV reads DeviceJobs from a CSV file (Excel dialect).
func LoadCSV(path string) ([]DeviceJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &util.ParseError{File: path, Reason: err.Error()}
	}
	defer f.Close()

	jobs, err := readCSV(path, f)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func readCSV(path string, r io.Reader) ([]DeviceJob, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows may have trailing cells omitted

	var jobs []DeviceJob
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &util.ParseError{File: path, Row: rowNum + 1, Reason: err.Error()}
		}
		rowNum++
		if rowNum == 1 {
			continue // header row
		}

		job, err := jobFromRow(path, rowNum, record)
		if err != nil {
			return nil, err
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}
