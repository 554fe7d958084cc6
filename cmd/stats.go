package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statsCmd prints streaks and per-category totals over every stored day.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Journaling streaks and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRenderer()
		if err != nil {
			return err
		}
		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		s, err := store.Stats(cmd.Context(), time.Now().In(cfg.Location()))
		if err != nil {
			return err
		}
		out, err := r.RenderStats(s)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	addOutputFlags(statsCmd)
}
