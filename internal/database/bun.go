package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/kainuguru/ingestion-core/internal/models"
)

// Driver selects which dialect a Config targets. Postgres backs production runs; sqlite
// backs tests and the fixture-only CLI mode, where a real database is not worth standing up.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

type Config struct {
	Driver          Driver        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	DSN             string        `mapstructure:"dsn"` // sqlite: file path, or ":memory:"
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"max_idle_time"`
}

type BunDB struct {
	*bun.DB
	config Config
}

func NewBun(cfg Config) (*BunDB, error) {
	var sqldb *sql.DB
	var dialect bun.Dialect

	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		var err error
		sqldb, err = sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		dialect = sqlitedialect.New()
	case DriverPostgres, "":
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
			cfg.SSLMode,
		)
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	sqldb.SetConnMaxIdleTime(30 * time.Minute)

	db := bun.NewDB(sqldb, dialect)

	if cfg.Driver == DriverSQLite {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	registerModels(db)

	log.Info().
		Str("driver", string(cfg.Driver)).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_conns", cfg.MaxOpenConns).
		Msg("bun ORM initialized")

	return &BunDB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *BunDB) Close() error {
	if db.DB != nil {
		log.Info().Msg("closing database connection")
		return db.DB.Close()
	}
	return nil
}

func (db *BunDB) Health() error {
	return db.DB.Ping()
}

// registerModels registers all ingestion-core models so bun can resolve relations
// (CanonicalProduct.Listings, RetailerListing.Prices, ...) without a query-time hint.
func registerModels(db *bun.DB) {
	db.RegisterModel(
		(*models.Retailer)(nil),
		(*models.CanonicalProduct)(nil),
		(*models.RetailerListing)(nil),
		(*models.PriceObservation)(nil),
		(*models.LatestPrice)(nil),
		(*models.IngestionRun)(nil),
		(*models.ProductOverride)(nil),
	)
}

// CreateSchema creates all tables for a fresh sqlite database. Used by tests and the
// fixture-only CLI mode; production schema lives in the external migrator (§1 out of scope).
func (db *BunDB) CreateSchema(ctx context.Context) error {
	models := []interface{}{
		(*models.Retailer)(nil),
		(*models.CanonicalProduct)(nil),
		(*models.RetailerListing)(nil),
		(*models.PriceObservation)(nil),
		(*models.LatestPrice)(nil),
		(*models.IngestionRun)(nil),
		(*models.ProductOverride)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}
