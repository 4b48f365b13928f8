package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NormalizeDSN forces the driver options the store depends on: time parsing,
// found-rows semantics so an UPDATE that matches an unchanged row still
// reports one affected row, and multi-statement execution for migrations.
func NormalizeDSN(dbURL string) (string, error) {
	cfg, err := mysql.ParseDSN(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB_URL: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

func InitDB(dbURL string, logger zerolog.Logger) *sqlx.DB {
	dsn, err := NormalizeDSN(dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not parse database URL")
	}

	database, err := sqlx.Open("mysql", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not connect to database")
	}

	if err = database.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Database is not responding")
	}

	logger.Info().Msg("Connected to database")
	return database
}

func RunMigrations(database *sqlx.DB, logger zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := migratemysql.WithInstance(database.DB, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	// m.Close is not called: it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migrations complete")
	return nil
}
