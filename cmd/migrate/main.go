// Package main applies database schema migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"stockledger/pkg/logger"
)

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", "migrations", "path to migrations directory")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Development: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalw("failed to open database", "error", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		log.Fatalw("failed to create migration driver", "error", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "pgx5", driver)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalw("migration up failed", "error", err)
		}
		log.Info("migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalw("migration down failed", "error", err)
		}
		log.Info("rolled back one migration")

	case "step":
		if len(args) < 2 {
			log.Fatal("step count required")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalw("invalid step count", "value", args[1])
		}
		if err := m.Steps(n); err != nil {
			log.Fatalw("migration step failed", "error", err)
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info("no migrations applied")
				return
			}
			log.Fatalw("failed to get version", "error", err)
		}
		log.Infow("current migration version", "version", version, "dirty", dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("version required")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalw("invalid version number", "value", args[1])
		}
		if err := m.Force(version); err != nil {
			log.Fatalw("force version failed", "error", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stockledger migration tool

Usage:
  migrate [-path dir] <command> [arguments]

Commands:
  up               apply all pending migrations
  down             roll back the most recent migration
  step <n>         apply n migrations (negative rolls back)
  version          show current migration version
  force <version>  force set migration version

Environment:
  DATABASE_URL     postgres connection string`)
}
