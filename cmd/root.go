package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/config"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/logging"
	"github.com/ramanasai/reflectboard/internal/notify"
	"github.com/ramanasai/reflectboard/internal/schedule"
)

var (
	cfgFile string
	cfg     = config.Default()
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:          "reflectboard",
	Short:        "Daily reflection board with a coaching chat",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		// the full-screen UI owns the terminal
		if cmd == rootCmd || cmd == tuiCmd {
			logger, err = logging.ForTUI(cfg.Log)
		} else {
			logger, err = logging.New(cfg.Log)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = logger.Sync() },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/reflectboard/config.yaml)")
	rootCmd.AddCommand(tuiCmd, serveCmd, noteCmd, listCmd, searchCmd, showCmd, editCmd, deleteCmd, statsCmd, versionCmd)
}

// startReminder runs the daily reminder for as long as ctx lives. It only
// nudges when today's board is still empty.
func startReminder(ctx context.Context, store *db.Store) {
	if !cfg.Reminder.Enabled || os.Getenv("REFLECTBOARD_NO_REMINDER") == "1" {
		return
	}
	r := schedule.Reminder{
		Pending: func(ctx context.Context, date string) (bool, error) {
			rec, err := store.Get(ctx, date)
			if errors.Is(err, db.ErrNotFound) {
				return true, nil
			}
			if err != nil {
				return false, err
			}
			return len(rec.Items) == 0, nil
		},
		Notify:   notify.Info,
		Location: cfg.Location(),
		Logger:   logger.Named("reminder"),
	}
	go schedule.RunConfigured(ctx, cfg, func(at time.Time) { r.Fire(ctx, at) })
}
