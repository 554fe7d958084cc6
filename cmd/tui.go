package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/journal"
	"github.com/ramanasai/reflectboard/internal/ui"
)

// tuiCmd launches the Bubble Tea board. It is also what a bare
// `reflectboard` runs.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the reflection board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func runTUI(ctx context.Context) error {
	dbh, store, err := openStore()
	if err != nil {
		return err
	}
	defer dbh.Close()

	responder, err := newResponder(ctx, nil)
	if err != nil {
		return err
	}

	opts := []journal.Option{
		journal.WithLocation(cfg.Location()),
		journal.WithLogger(logger.Named("journal")),
	}
	if cfg.Autosave.Delay > 0 {
		opts = append(opts, journal.WithAutosaveDelay(cfg.Autosave.Delay))
	}
	flow := journal.New(board.New(boardLayout()), responder, store, opts...)
	defer flow.Close()

	// pick up today's board, and its conversation if there is one
	rec, err := store.Get(ctx, flow.Today())
	switch {
	case err == nil:
		conversation := rec.SelectedItem != nil && len(rec.ChatMessages) > 0
		if err := flow.Resume(rec, conversation); err != nil {
			logger.Warn("resume today failed", zap.String("date", rec.Date), zap.Error(err))
		}
	case errors.Is(err, db.ErrLocked), errors.Is(err, db.ErrDecrypt):
		return fmt.Errorf("load today's reflection: %w (check store.passphrase)", err)
	case !errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("load today's reflection: %w", err)
	}

	startReminder(ctx, store)
	logger.Info("tui started", zap.String("date", flow.Today()))
	return ui.Run(ctx, flow, store,
		ui.WithTheme(ui.ThemeByName(cfg.Theme)),
		ui.WithLogger(logger.Named("ui")),
	)
}
