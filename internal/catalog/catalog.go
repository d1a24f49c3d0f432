// Package catalog reads the distinct listing locations that feed the
// location grouper.
package catalog

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/placefinder/internal/config"
	"github.com/sells-group/placefinder/internal/db"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = eris.New("catalog: unknown driver")

// Source lists the locations attached to catalog entries.
type Source interface {
	// Locations returns every distinct non-empty location.
	Locations(ctx context.Context) ([]string, error)
	Close() error
}

// Open builds the Source selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CatalogConfig) (Source, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg)
	case "sqlite":
		return NewSQLite(cfg)
	default:
		return nil, eris.Wrapf(ErrUnknownDriver, "driver %q", cfg.Driver)
	}
}

// locationsQuery selects distinct non-empty values of column. Both names are
// quoted, so they cannot inject SQL.
func locationsQuery(table, column string) string {
	col := db.Identifier(column)
	return fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL AND %s <> '' ORDER BY 1",
		col, db.Identifier(table), col, col,
	)
}
