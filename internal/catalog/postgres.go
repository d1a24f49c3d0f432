package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/placefinder/internal/config"
	"github.com/sells-group/placefinder/internal/db"
)

// PostgresSource reads locations through a pgx pool.
type PostgresSource struct {
	pool  db.Pool
	query string
}

// NewPostgres connects to cfg.DatabaseURL.
func NewPostgres(ctx context.Context, cfg config.CatalogConfig) (*PostgresSource, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, &db.PoolConfig{MaxConns: cfg.MaxConns})
	if err != nil {
		return nil, eris.Wrap(err, "catalog: postgres")
	}
	return NewPostgresFromPool(pool, cfg.Table, cfg.Column), nil
}

// NewPostgresFromPool wraps an existing pool. The source takes ownership and
// closes it on Close.
func NewPostgresFromPool(pool db.Pool, table, column string) *PostgresSource {
	return &PostgresSource{pool: pool, query: locationsQuery(table, column)}
}

// Locations implements Source.
func (s *PostgresSource) Locations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: query locations")
	}
	locations, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, eris.Wrap(err, "catalog: scan locations")
	}
	return locations, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
