package source

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads fact/answer rows from a Google Sheets range.
type SheetsSource struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
}

// NewSheetsSource authenticates with a service-account credentials file, or
// with an API key for publicly shared sheets when apiKey is set.
func NewSheetsSource(ctx context.Context, spreadsheetID, readRange, credentialsFile, apiKey string) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("SHEET_ID is required for the sheets source")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSource{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

func (s *SheetsSource) Name() string {
	return "sheets"
}

func (s *SheetsSource) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.readRange, err)
	}
	return cellsToRows(resp.Values), nil
}

// cellsToRows converts the API's loosely typed cells to strings. Trailing
// empty cells are already dropped by the API, so a row with a blank answer
// arrives with one column.
func cellsToRows(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, len(v))
		for i, cell := range v {
			if cell == nil {
				continue
			}
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows
}
