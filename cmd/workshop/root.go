package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/config"
	"github.com/sakif/workshop/internal/server"
	"github.com/sakif/workshop/internal/service"
)

// app carries what every subcommand needs once the root has parsed flags.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger

	// flag overrides
	storage string
	dbPath  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "workshop",
		Short:         "Organize workshop tools, themes and published links",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.storage != "" {
				cfg.Storage = a.storage
			}
			if a.dbPath != "" {
				cfg.DBPath = a.dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Logger(a.stderr)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.storage, "storage", "", "storage backend: sqlite, redis or memory (default from WORKSHOP_STORAGE)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "sqlite database path (default from WORKSHOP_DB_PATH)")

	root.AddCommand(
		a.serveCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.promptCmd(),
		a.templatesCmd(),
		a.toolsCmd(),
		a.themesCmd(),
		a.notesCmd(),
		a.resetCmd(),
	)
	return root
}

// withService opens the configured store, runs fn and closes the store.
func (a *app) withService(ctx context.Context, fn func(*service.WorkshopService) error) error {
	svc, closeRepo, err := server.OpenService(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeRepo()
	return fn(svc)
}

// userError strips the wrapping from domain errors so the CLI prints the
// human-readable message only.
func userError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s", appErr.Message)
	}
	return err
}
