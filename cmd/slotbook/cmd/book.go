package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Initialize or inspect the day's position book",
	Long: `Manage the day's position book.

Subcommands:
  init   - Replace the book with a fresh one from the config (discards all positions)
  status - Print the capital summary and every slot

Examples:
  slotbook book init
  slotbook book status`,
}

var bookInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Replace the book with a fresh one from the config",
	Args:  cobra.NoArgs,
	RunE:  runBookInit,
}

var bookStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the capital summary and every slot",
	Args:  cobra.NoArgs,
	RunE:  runBookStatus,
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.AddCommand(bookInitCmd)
	bookCmd.AddCommand(bookStatusCmd)
}

func runBookInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, cfg, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	b, err := sess.Initialize(ctx, cfg.Trading.BookConfig())
	if err != nil {
		return fmt.Errorf("initialize book: %w", err)
	}

	fmt.Printf("✓ Fresh book %s: %d slots, $%s per portion\n",
		b.SessionID, len(b.Positions), b.Config.CapitalPerPortion().StringFixed(2))
	return nil
}

func runBookStatus(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	b := sess.Book()
	s := sess.Summary()

	fmt.Printf("Session %s\n", b.SessionID)
	fmt.Printf("  Starting:  $%s\n", s.StartingCapital.StringFixed(2))
	fmt.Printf("  Deployed:  $%s\n", s.DeployedCapital.StringFixed(2))
	fmt.Printf("  Available: $%s\n", s.AvailableCapital.StringFixed(2))
	fmt.Printf("  Total P&L: $%s\n\n", s.TotalPnL.StringFixed(2))

	for _, p := range b.Positions {
		switch {
		case p.Quantity > 0:
			fmt.Printf("  slot %d: %-6s %s  ×%-5d avg %s  last %s  stop %s  P&L %s\n",
				p.Slot, p.Symbol, p.Status, p.Quantity,
				p.AveragePrice.StringFixed(2), p.CurrentPrice.StringFixed(2),
				p.StopPrice.StringFixed(2), p.PnL.StringFixed(2))
		case p.Symbol != "":
			fmt.Printf("  slot %d: %-6s %s  P&L %s\n",
				p.Slot, p.Symbol, p.Status, p.PnL.StringFixed(2))
		default:
			fmt.Printf("  slot %d: %s\n", p.Slot, p.Status)
		}
	}
	return nil
}
