package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcbaptista/jobmatch/model"
)

// PostgresSource reads postings from a PostgreSQL table with the columns
// id, name, position, description, requirements, location, salary_min, salary_max, salary_currency.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresSource connects and pings the database. Callers must Close the source.
func NewPostgresSource(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresSource{pool: pool, table: table}, nil
}

func selectJobsSQL(table string) string {
	return fmt.Sprintf(`SELECT id, name,
		COALESCE(position, ''), COALESCE(description, ''), COALESCE(requirements, ''), COALESCE(location, ''),
		salary_min, salary_max, COALESCE(salary_currency, '')
		FROM %s ORDER BY id`, pgx.Identifier{table}.Sanitize())
}

func (s *PostgresSource) FetchAll(ctx context.Context) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx, selectJobsSQL(s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Document, error) {
		var (
			doc                  model.Document
			salaryMin, salaryMax *float64
			currency             string
		)
		if err := row.Scan(&doc.ID, &doc.Name, &doc.Position, &doc.Description, &doc.Requirements,
			&doc.Location, &salaryMin, &salaryMax, &currency); err != nil {
			return model.Document{}, err
		}
		doc.Salary = salaryRange(salaryMin, salaryMax, currency)
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.table, err)
	}
	return docs, nil
}

func (s *PostgresSource) Close() {
	s.pool.Close()
}
