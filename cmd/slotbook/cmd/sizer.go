package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/slotbook/money"
	"github.com/rustyeddy/slotbook/sizer"
)

var sizerCmd = &cobra.Command{
	Use:   "sizer <capital> <risk-budget> <entry> <stop>",
	Short: "Size a position so a stop-out loses at most the risk budget",
	Long: `Stand-alone position-size calculator. Independent of the book:
it answers "how many shares can I buy" given free capital, a dollar risk
budget, and the planned entry and stop prices. Inputs are persisted so
the dashboard calculator restores them.

Example:
  slotbook sizer 10000 200 50 48`,
	Args: cobra.ExactArgs(4),
	RunE: runSizer,
}

func init() {
	rootCmd.AddCommand(sizerCmd)
}

func runSizer(cmd *cobra.Command, args []string) error {
	capital, err := money.Parse(args[0])
	if err != nil {
		return fmt.Errorf("capital: %w", err)
	}
	riskBudget, err := money.Parse(args[1])
	if err != nil {
		return fmt.Errorf("risk-budget: %w", err)
	}
	entry, err := money.Parse(args[2])
	if err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	stop, err := money.Parse(args[3])
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	in := sizer.Inputs{Capital: capital, RiskBudget: riskBudget, EntryPrice: entry, StopPrice: stop}

	result := sizer.Calculate(in)

	fmt.Printf("Max shares:        %d\n", result.MaxShares)
	fmt.Printf("Risk per share:    $%s\n", result.RiskPerShare.StringFixed(2))
	fmt.Printf("Position size:     $%s\n", result.PositionSize.StringFixed(2))
	fmt.Printf("Percent risked:    %s%%\n", result.PercentRisked.StringFixed(2))
	fmt.Printf("Capital remaining: $%s\n", result.CapitalRemaining.StringFixed(2))

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return sess.SaveSizer(ctx, in)
}
