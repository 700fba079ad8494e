package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/slotbook/journal"
	"github.com/rustyeddy/slotbook/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the daily Org-mode report",
	Long: `Render the day's report: the capital summary, every slot, and
the closed trades as Org-mode blocks ready to paste into a review journal.

Example:
  slotbook report >> reviews/2026-08.org`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	sess, cfg, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	now := time.Now()

	var trades []journal.TradeRecord
	if cfg.Journal.Type == "sqlite" {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		start, end, err := dayBounds(time.Local, now.In(time.Local).Format("2006-01-02"))
		if err != nil {
			return err
		}
		if trades, err = j.ListTradesClosedBetween(start, end); err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
	}

	fmt.Println(report.Render(sess.Book(), trades, now))
	return nil
}
