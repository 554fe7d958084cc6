package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/utils"
)

var (
	searchLimit int
	searchPage  int
)

// searchCmd matches notes, topics and chat messages, ignoring case.
var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search notes and conversations",
	Long: `Examples:
	reflectboard search demo                      # any note, topic or chat line
	reflectboard search "code review" --format compact`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		r, err := newRenderer()
		if err != nil {
			return err
		}
		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		recs, err := store.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		if searchLimit <= 0 || searchLimit > 1000 {
			searchLimit = 20
		}
		p := utils.NewPage(len(recs), searchLimit, searchPage)
		start, end := p.Range()
		if len(recs) > 0 {
			recs = recs[start-1 : end]
		}

		out, err := r.RenderList(utils.RecordList{Records: recs, Page: p, Query: query})
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Days per page")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page number to show")
	addOutputFlags(searchCmd)
}
