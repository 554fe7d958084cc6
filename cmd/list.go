package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/utils"
)

var (
	since  string
	until  string
	preset string
	limit  int
	page   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled days, newest first",
	Long: `Examples:
	reflectboard list                             # everything, 20 days per page
	reflectboard list --since "2 weeks ago"       # since a relative day
	reflectboard list --preset last30days         # last 30 days
	reflectboard list --format table --limit 50   # table format
	reflectboard list --format csv > days.csv     # export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().In(cfg.Location())

		var from, to string
		switch {
		case preset != "":
			s, u, err := utils.DayRange(preset, now)
			if err != nil {
				return fmt.Errorf("invalid preset %q: %w", preset, err)
			}
			from, to = utils.FormatDay(s), utils.FormatDay(u)
		case since != "":
			s, err := utils.ParseDay(since, now)
			if err != nil {
				return fmt.Errorf("invalid --since date %q: %w", since, err)
			}
			from = utils.FormatDay(s)
		}
		if until != "" {
			u, err := utils.ParseDay(until, now)
			if err != nil {
				return fmt.Errorf("invalid --until date %q: %w", until, err)
			}
			to = utils.FormatDay(u)
		}
		if limit <= 0 || limit > 1000 {
			limit = 20
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

		ctx := cmd.Context()
		total, err := store.Count(ctx, from, to)
		if err != nil {
			return err
		}
		p := utils.NewPage(total, limit, page)
		recs, err := store.ListRange(ctx, from, to, p.PerPage, p.Offset)
		if err != nil {
			return err
		}

		out, err := r.RenderList(utils.RecordList{Records: recs, Page: p, Since: from, Until: to})
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&since, "since", "", "First day (supports: yesterday, 'last week', '3 days ago', 2026-01-15, etc.)")
	listCmd.Flags().StringVar(&until, "until", "", "Last day, same forms as --since")
	listCmd.Flags().StringVar(&preset, "preset", "", "Date preset: today, yesterday, week, month, year, last7days, last30days, last90days")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Days per page")
	listCmd.Flags().IntVar(&page, "page", 1, "Page number to show")
	addOutputFlags(listCmd)
}
