package main

import (
	"fmt"
	"os"

	"github.com/ashureev/tabtime/internal/cli"
	"github.com/ashureev/tabtime/internal/config"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// TABTIME_DB points the CLI at a daemon's database without touching
	// the daemon's own DB_PATH.
	dbPath := cfg.DBPath
	if v := os.Getenv("TABTIME_DB"); v != "" {
		dbPath = v
	}

	app := &cli.App{
		DBPath:   dbPath,
		Location: cfg.Location,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
