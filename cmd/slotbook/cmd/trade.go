package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/money"
)

var fillCmd = &cobra.Command{
	Use:   "fill <slot> <symbol> <price> <quantity>",
	Short: "Buy the next portion of a slot",
	Long: `Fill the next portion of a slot at the given price. The cost
(price × quantity) must not exceed the per-portion capital cap.

Example:
  slotbook fill 1 NVDA 50.25 15`,
	Args: cobra.ExactArgs(4),
	RunE: runFill,
}

var priceCmd = &cobra.Command{
	Use:   "price <slot> <price>",
	Short: "Record an observed price on a slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runPrice,
}

var sellCmd = &cobra.Command{
	Use:   "sell <slot> <quantity> <price>",
	Short: "Sell shares from a slot",
	Args:  cobra.ExactArgs(3),
	RunE:  runSell,
}

var stopCmd = &cobra.Command{
	Use:   "stop <slot>",
	Short: "Execute a slot's stop at its derived stop price",
	Args:  cobra.ExactArgs(1),
	RunE:  runStop,
}

var resetCmd = &cobra.Command{
	Use:   "reset <slot>",
	Short: "Return a slot to available",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

var gradeCmd = &cobra.Command{
	Use:   "grade <slot> <1-5>",
	Short: "Grade a slot's execution (same grade again clears it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runGrade,
}

var noteCmd = &cobra.Command{
	Use:   "note <slot> <text...>",
	Short: "Replace a slot's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNote,
}

func init() {
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(noteCmd)
}

func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("slot must be an integer, got %q", arg)
	}
	return slot, nil
}

func parseQuantity(arg string) (int64, error) {
	qty, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity must be an integer, got %q", arg)
	}
	return qty, nil
}

func printPosition(p book.Position) {
	if p.Quantity > 0 {
		fmt.Printf("slot %d: %s %s ×%d avg %s stop %s P&L %s\n",
			p.Slot, p.Symbol, p.Status, p.Quantity,
			p.AveragePrice.StringFixed(2), p.StopPrice.StringFixed(2),
			p.PnL.StringFixed(2))
		return
	}
	fmt.Printf("slot %d: %s P&L %s\n", p.Slot, p.Status, p.PnL.StringFixed(2))
}

func runFill(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	price, err := money.Parse(args[2])
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	qty, err := parseQuantity(args[3])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.Fill(ctx, slot, strings.ToUpper(args[1]), price, qty)
	if err != nil {
		return err
	}
	printPosition(p)
	return nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	price, err := money.Parse(args[1])
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, breached, err := sess.UpdatePrice(ctx, slot, price)
	if err != nil {
		return err
	}
	printPosition(p)
	if breached {
		fmt.Printf("⚠ stop breached: %s at or below %s, run: slotbook stop %d\n",
			p.Symbol, p.StopPrice.StringFixed(2), p.Slot)
	}
	return nil
}

func runSell(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	price, err := money.Parse(args[2])
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.Sell(ctx, slot, book.SellOrder{Quantity: qty, Price: price})
	if err != nil {
		return err
	}
	printPosition(p)
	if p.Status == book.StatusClosed && p.Closed != nil {
		fmt.Printf("closed %s: %d @ %s, P&L %s\n",
			p.Closed.Symbol, p.Closed.Quantity,
			p.Closed.ExitPrice.StringFixed(2), p.Closed.PnL.StringFixed(2))
	}
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.Stop(ctx, slot)
	if err != nil {
		return err
	}
	printPosition(p)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.Reset(ctx, slot)
	if err != nil {
		return err
	}
	printPosition(p)
	return nil
}

func runGrade(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	grade, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("grade must be an integer, got %q", args[1])
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.SetGrade(ctx, slot, grade)
	if err != nil {
		return err
	}
	if p.Grade == 0 {
		fmt.Printf("slot %d: grade cleared\n", p.Slot)
	} else {
		fmt.Printf("slot %d: grade %d/5\n", p.Slot, p.Grade)
	}
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, _, cleanup, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := sess.SetNotes(ctx, slot, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("slot %d: notes updated\n", p.Slot)
	return nil
}
