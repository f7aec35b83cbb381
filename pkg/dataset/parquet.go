package dataset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
)

// EpisodeRecord is the Parquet schema for episode exports. Optional fields
// are pointers and map to null cells.
type EpisodeRecord struct {
	PatientID string     `parquet:"patient_id"`
	StartDate *time.Time `parquet:"episode_start_date"`
	EndDate   *time.Time `parquet:"episode_end_date"`
	Age       *float64   `parquet:"age"`
	Cluster   *int32     `parquet:"cluster"`
	Diagnosis *string    `parquet:"diagnosis"`
}

// ReadParquet loads a Parquet file of EpisodeRecord rows into a Table with
// the columns patient_id, episode_start_date, episode_end_date, age,
// cluster and diagnosis.
func ReadParquet(path string) (*Table, error) {
	records, err := parquet.ReadFile[EpisodeRecord](path)
	if err != nil {
		return nil, fmt.Errorf("error reading parquet file: %w", err)
	}

	table, err := New("patient_id", "episode_start_date", "episode_end_date", "age", "cluster", "diagnosis")
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		cells := []Value{
			String(rec.PatientID),
			timeCell(rec.StartDate),
			timeCell(rec.EndDate),
			floatCell(rec.Age),
			intCell(rec.Cluster),
			textCell(rec.Diagnosis),
		}
		if err := table.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// WriteParquet writes EpisodeRecord rows to a Parquet file, the inverse of
// ReadParquet. Useful for exporting prepared datasets.
func WriteParquet(path string, records []EpisodeRecord) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("error writing parquet file: %w", err)
	}
	return nil
}

func timeCell(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return String(t.Format(canonicalLayout))
}

func floatCell(f *float64) Value {
	if f == nil {
		return Null()
	}
	return String(strconv.FormatFloat(*f, 'g', -1, 64))
}

func intCell(n *int32) Value {
	if n == nil {
		return Null()
	}
	return String(strconv.Itoa(int(*n)))
}

func textCell(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}
