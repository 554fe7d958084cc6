package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/encryption"
	"github.com/ramanasai/reflectboard/internal/utils"
	"github.com/ramanasai/reflectboard/internal/version"
)

// openStore opens the configured database. The caller closes the handle.
func openStore() (*sql.DB, *db.Store, error) {
	dbh, err := db.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	var opts []db.StoreOption
	if cfg.Store.Passphrase != "" {
		saltPath := cfg.Store.SaltPath
		if saltPath == "" {
			if saltPath, err = encryption.DefaultSaltPath(); err != nil {
				_ = dbh.Close()
				return nil, nil, err
			}
		}
		enc, err := encryption.NewEncryptor(cfg.Store.Passphrase, saltPath)
		if err != nil {
			_ = dbh.Close()
			return nil, nil, fmt.Errorf("store encryption: %w", err)
		}
		opts = append(opts, db.WithEncryptor(enc))
	}
	opts = append(opts, db.WithLogger(logger.Named("store")))
	return dbh, db.NewStore(dbh, opts...), nil
}

// newResponder wires the configured provider; without an API key every
// reply is a local fallback question. reg may be nil.
func newResponder(ctx context.Context, reg prometheus.Registerer) (*coach.Responder, error) {
	completer, err := coach.NewCompleter(ctx, coach.Config{
		Provider:    cfg.Chat.Provider,
		APIKey:      cfg.Chat.APIKey,
		Model:       cfg.Chat.Model,
		BaseURL:     cfg.Chat.BaseURL,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Timeout:     cfg.Chat.Timeout,
		UserAgent:   version.UserAgent(),
	})
	if err != nil {
		return nil, err
	}
	if completer == nil {
		logger.Info("no chat api key configured, using local questions", zap.String("provider", cfg.Chat.Provider))
	}

	policy := coach.DefaultRetryPolicy()
	if cfg.Chat.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Chat.MaxAttempts
	}
	opts := []coach.ResponderOption{
		coach.WithPolicy(policy),
		coach.WithLogger(logger.Named("coach")),
	}
	if reg != nil {
		m, err := coach.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, coach.WithMetrics(m))
	}
	return coach.NewResponder(completer, opts...), nil
}

func boardLayout() board.Layout {
	l := board.DefaultLayout()
	if cfg.Board.Width > 0 && cfg.Board.Height > 0 {
		l.BoardWidth, l.BoardHeight = cfg.Board.Width, cfg.Board.Height
	}
	if cfg.Board.NoteWidth > 0 && cfg.Board.NoteHeight > 0 {
		l.NoteWidth, l.NoteHeight = cfg.Board.NoteWidth, cfg.Board.NoteHeight
	}
	return l
}

func today() string {
	return time.Now().In(cfg.Location()).Format(db.DateLayout)
}

// output flags shared by the listing commands
var (
	format  string
	noColor bool
)

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVar(&format, "format", "default", "Output format: default, table, json, csv, compact, quiet")
	c.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func newRenderer() (*utils.Renderer, error) {
	rc := utils.DefaultRenderConfig()
	f, err := utils.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	rc.Format = f
	if noColor || os.Getenv("NO_COLOR") != "" {
		rc.Color = false
	}
	return utils.NewRenderer(rc), nil
}
