package catalog

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/placefinder/internal/config"
)

// SQLiteSource reads locations from a SQLite file.
type SQLiteSource struct {
	db    *sql.DB
	query string
}

// NewSQLite opens the SQLite file at cfg.DatabaseURL.
func NewSQLite(cfg config.CatalogConfig) (*SQLiteSource, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "placefinder.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "catalog: sqlite exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db, query: locationsQuery(cfg.Table, cfg.Column)}, nil
}

// Locations implements Source.
func (s *SQLiteSource) Locations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: query locations")
	}
	defer rows.Close() //nolint:errcheck

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, eris.Wrap(err, "catalog: scan location")
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: iterate locations")
	}
	return locations, nil
}

// Close closes the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
