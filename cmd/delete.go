package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/utils"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <day>",
	Short: "Delete a journaled day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := utils.ParseDay(args[0], time.Now().In(cfg.Location()))
		if err != nil {
			return err
		}
		date := utils.FormatDay(d)

		if !deleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete the reflection for %s? [y/N] ", date)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		dbh, store, err := openStore()
		if err != nil {
			return err
		}
		defer dbh.Close()

		if err := store.Delete(cmd.Context(), date); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("nothing journaled on %s", date)
			}
			return err
		}
		logger.Info("deleted reflection", zap.String("date", date))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", date)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}
