package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/utils"
)

var showCmd = &cobra.Command{
	Use:   "show [day]",
	Short: "Show one day's notes, connections and conversation",
	Long: `Examples:
	reflectboard show                  # today
	reflectboard show yesterday
	reflectboard show 2026-10-18 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := today()
		if len(args) == 1 {
			d, err := utils.ParseDay(args[0], time.Now().In(cfg.Location()))
			if err != nil {
				return err
			}
			date = utils.FormatDay(d)
		}

		r, err := newRenderer()
		if err != nil {
			return err
		}
		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		rec, err := store.Get(cmd.Context(), date)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("nothing journaled on %s", date)
		}
		if err != nil {
			return err
		}
		out, err := r.RenderRecord(rec)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	addOutputFlags(showCmd)
}
