package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// readCSVMatrix reads a numeric CSV file into row-major records. A first
// row that does not parse as numbers is treated as a header and skipped.
func readCSVMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				if i == 0 {
					ok = false
					break
				}
				return nil, fmt.Errorf("%s row %d column %d: %w", path, i+1, j+1, err)
			}
			row[j] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s contains no numeric rows", path)
	}
	return rows, nil
}

// readCSVSeries reads a single-column CSV file into a float series.
func readCSVSeries(path string) ([]float64, error) {
	rows, err := readCSVMatrix(path)
	if err != nil {
		return nil, err
	}
	series := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != 1 {
			return nil, fmt.Errorf("%s row %d: expected one column, got %d", path, i+1, len(row))
		}
		series[i] = row[0]
	}
	return series, nil
}
