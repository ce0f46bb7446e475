// Command migrate manages the database schema.
//
//	migrate [up|down|version|force N|drop]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/egannguyen/sales-orders/internal/config"
	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/golang-migrate/migrate/v4"
)

func main() {
	steps := flag.Int("steps", 0, "apply or roll back only N migrations (up/down)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-steps N] up|down|version|force VERSION|drop\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:], *steps); err != nil {
		slog.Error("Migration failed", "cmd", flag.Arg(0), "err", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, steps int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(database.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		if len(args) != 1 {
			return errors.New("force needs a version")
		}
		v, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], convErr)
		}
		err = m.Force(v)
	case "drop":
		err = m.Drop()
	case "version":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		slog.Info("No migrations applied")
	case err != nil:
		return err
	default:
		slog.Info("Schema version", "version", version, "dirty", dirty)
	}
	return nil
}
