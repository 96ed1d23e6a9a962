package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FactsSchema creates the table FactStore reads from.
const FactsSchema = `
CREATE TABLE IF NOT EXISTS facts (
	id       BIGSERIAL PRIMARY KEY,
	fact     TEXT NOT NULL,
	answer   TEXT,
	position INT NOT NULL DEFAULT 0
)`

// FactStore reads the knowledge base from the facts table.
type FactStore struct {
	db *pgxpool.Pool
}

func NewFactStore(db *pgxpool.Pool) *FactStore {
	return &FactStore{db: db}
}

func (s *FactStore) Name() string {
	return "postgres"
}

// Rows returns (fact, answer) pairs in table order, so later rows win on
// duplicate facts the same way a spreadsheet's lower rows do.
func (s *FactStore) Rows(ctx context.Context) ([][]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fact, answer
		 FROM facts ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var results [][]string
	for rows.Next() {
		var (
			fact   string
			answer *string
		)
		if err := rows.Scan(&fact, &answer); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		results = append(results, factRow(fact, answer))
	}
	return results, rows.Err()
}

// factRow drops a NULL answer, leaving a one-column row that the knowledge
// base skips like a blank spreadsheet cell.
func factRow(fact string, answer *string) []string {
	if answer == nil {
		return []string{fact}
	}
	return []string{fact, *answer}
}

func (s *FactStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM facts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
