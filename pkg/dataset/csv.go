package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV loads a CSV file into a Table. The first record is the header.
// Empty fields become null cells; all other fields are kept as trimmed
// text.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSVFrom(file)
}

// ReadCSVFrom loads CSV data from a reader into a Table.
func ReadCSVFrom(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	table, err := New(header...)
	if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		cells := make([]Value, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				cells[i] = Null()
				continue
			}
			cells[i] = String(field)
		}
		if err := table.AppendRow(cells...); err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
	}

	return table, nil
}
