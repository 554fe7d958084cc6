package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/db"
)

var noteCategory string

var noteCmd = &cobra.Command{
	Use:   "note [text]",
	Short: "Add a note to today's board",
	Long: `Examples:
	reflectboard note "Shipped the feature on time"
	reflectboard note -c growth "Ask for review earlier"
	reflectboard note -c insight "Small PRs get merged faster"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := board.ParseCategory(noteCategory)
		if err != nil {
			return err
		}
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return errors.New("note text is empty")
		}

		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		ctx := cmd.Context()
		date := today()
		rec, err := store.Get(ctx, date)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		rec.Date = date

		b := board.New(boardLayout())
		b.Restore(rec.Items, rec.Connections)
		if _, err := b.AddNoteWithText(cat, text); err != nil {
			return err
		}
		rec.Items = b.FilledNotes()
		rec.Connections = b.Connections()
		if _, err := store.Upsert(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("Saved %s note to %s (%d on the board).\n", cat, date, len(rec.Items))
		return nil
	},
}

func init() {
	noteCmd.Flags().StringVarP(&noteCategory, "category", "c", string(board.CategoryGood), "Category: good|growth|insight")
}
