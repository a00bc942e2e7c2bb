package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// pgxDriverName is the database/sql name registered by pgx/v5/stdlib
const pgxDriverName = "pgx"

// Config holds the connection options
type Config struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to the configured database and pings it
func Open(ctx context.Context, cfg Config, logger blog.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = blog.DefaultLogger()
	}

	var db *bun.DB

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
		}
		// sqlite allows a single writer, keep one connection so
		// transactions never hit SQLITE_BUSY
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb, err := sql.Open(pgxDriverName, cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, errors.New(fmt.Sprintf("unsupported database driver %q", cfg.Driver), errors.CategoryBadInput)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to ping database")
	}

	logger.Info("database connected", "driver", cfg.Driver)

	return db, nil
}

// Migrate creates the users and posts tables and their indexes if missing
func Migrate(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().
			Model((*blog.User)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
		}

		if _, err := tx.NewCreateTable().
			Model((*blog.Post)(nil)).
			IfNotExists().
			ForeignKey(`("author_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create posts table")
		}

		indexes := []struct {
			name   string
			column string
		}{
			{name: "posts_title_idx", column: "title"},
			{name: "posts_author_id_idx", column: "author_id"},
		}

		for _, idx := range indexes {
			if _, err := tx.NewCreateIndex().
				Model((*blog.Post)(nil)).
				Index(idx.name).
				Column(idx.column).
				IfNotExists().
				Exec(ctx); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to create index "+idx.name)
			}
		}

		return nil
	})
}
