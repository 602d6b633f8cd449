// Package cli implements the tabtime command line: reports, CSV export and
// maintenance of the local session log.
package cli

import (
	"fmt"
	"time"

	"github.com/ashureev/tabtime/internal/store"
	"github.com/spf13/cobra"
)

// App holds what the commands need. Repo is opened from --db on first use
// unless it is already set.
type App struct {
	Repo     store.Repository
	DBPath   string
	Location *time.Location
	Now      func() time.Time

	// IsInteractive reports whether prompts can be shown.
	IsInteractive func() bool
	// Confirm asks a yes/no question.
	Confirm func(title string) (bool, error)

	opened bool
}

// NewRootCmd creates the top-level "tabtime" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tabtime",
		Short:         "Per-domain browser time reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.close()
		},
	}
	root.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "Path to the session database (env TABTIME_DB)")

	root.AddCommand(
		newReportCmd(app),
		newExportCmd(app),
		newClearCmd(app),
		newSessionsCmd(app),
	)

	return root
}

func (a *App) open() error {
	if a.Location == nil {
		a.Location = time.Local
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.IsInteractive == nil {
		a.IsInteractive = func() bool { return false }
	}
	if a.Confirm == nil {
		a.Confirm = confirmPrompt
	}
	if a.Repo != nil {
		return nil
	}

	repo, err := store.NewSQLite(a.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.Repo = repo
	a.opened = true
	return nil
}

func (a *App) close() error {
	if !a.opened {
		return nil
	}
	a.opened = false
	if err := a.Repo.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
