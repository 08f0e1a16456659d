package s0_load

import (
	"context"
	"fmt"

	"github.com/wonny/clv/pkg/config"
	"github.com/wonny/clv/pkg/database"
	"github.com/wonny/clv/pkg/logger"
)

// OpenSource builds the configured source. The returned closer releases any connection.
func OpenSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (Source, func(), error) {
	switch cfg.Data.Source {
	case config.SourceCSV:
		return NewCSVSource(cfg.Data.Path, cfg.Data.Encoding, log), func() {}, nil

	case config.SourcePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return NewPostgresSource(db.Pool, cfg.Data.Table, log), db.Close, nil

	case config.SourceMySQL:
		db, err := database.OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mysql: %w", err)
		}
		return NewMySQLSource(db, cfg.Data.Table, log), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Data.Source)
	}
}
