package source

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Source kinds
const (
	KindSheets   = "sheets"
	KindPostgres = "postgres"
	KindCSV      = "csv"
)

type Options struct {
	Kind string

	SheetID         string
	SheetRange      string
	CredentialsFile string
	GoogleAPIKey    string

	CSVPath string

	DB *pgxpool.Pool
}

// New creates the knowledge source selected by opts.Kind.
func New(ctx context.Context, opts Options) (domain.KnowledgeSource, error) {
	switch opts.Kind {
	case KindSheets:
		return NewSheetsSource(ctx, opts.SheetID, opts.SheetRange, opts.CredentialsFile, opts.GoogleAPIKey)

	case KindPostgres:
		if opts.DB == nil {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
		return store.NewFactStore(opts.DB), nil

	case KindCSV:
		if opts.CSVPath == "" {
			return nil, fmt.Errorf("FACTS_CSV_PATH is required for the csv source")
		}
		return NewCSVSource(opts.CSVPath), nil

	default:
		return nil, fmt.Errorf("unknown knowledge source: %s (valid options: sheets, postgres, csv)", opts.Kind)
	}
}
