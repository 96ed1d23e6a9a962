package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource reads fact/answer rows from a local CSV file.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "csv"
}

func (s *CSVSource) Path() string {
	return s.path
}

func (s *CSVSource) Rows(ctx context.Context) ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
