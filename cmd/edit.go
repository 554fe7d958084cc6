package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/utils"
)

var (
	editText     string
	editCategory string
)

var editCmd = &cobra.Command{
	Use:   "edit <day> <note-id>",
	Short: "Edit a note of a journaled day",
	Long: `Note ids are shown by "reflectboard show <day> --format json".

Examples:
	reflectboard edit today 1792400400000 -m "Shipped it a day early"
	reflectboard edit 2026-10-18 1792400400001 -c insight`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if editText == "" && editCategory == "" {
			return errors.New("nothing to update - specify --text or --category")
		}
		var cat board.Category
		if editCategory != "" {
			c, err := board.ParseCategory(editCategory)
			if err != nil {
				return err
			}
			cat = c
		}
		text := strings.TrimSpace(editText)
		if editText != "" && text == "" {
			return errors.New("note text cannot be blank")
		}

		d, err := utils.ParseDay(args[0], time.Now().In(cfg.Location()))
		if err != nil {
			return err
		}
		date := utils.FormatDay(d)

		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		ctx := cmd.Context()
		rec, err := store.Get(ctx, date)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("nothing journaled on %s", date)
		}
		if err != nil {
			return err
		}

		id := args[1]
		found := false
		for i := range rec.Items {
			if rec.Items[i].ID != id {
				continue
			}
			found = true
			if text != "" {
				rec.Items[i].Text = text
			}
			if cat != "" {
				rec.Items[i].Category = cat
			}
			if rec.SelectedItem != nil && rec.SelectedItem.ID == id {
				n := rec.Items[i]
				rec.SelectedItem = &n
			}
		}
		if !found {
			return fmt.Errorf("note %s not found on %s", id, date)
		}

		if _, err := store.Upsert(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("Note %s on %s updated.\n", id, date)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editText, "text", "m", "", "New text for the note")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category: good|growth|insight")
}
