// Package report renders a point-in-time, human-readable view of the
// book for the daily review: the aggregate capital summary, every slot,
// and the day's closed trades as Org-mode blocks ready for a reflection
// journal. It only reads the engine's normal accessors.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/journal"
)

// Render produces the full daily report.
func Render(b book.Book, trades []journal.TradeRecord, now time.Time) string {
	var out strings.Builder

	fmt.Fprintf(&out, "* Trading Day %s\n", now.UTC().Format("2006-01-02"))
	fmt.Fprintf(&out, ":PROPERTIES:\n:SESSION_ID: %s\n:END:\n\n", b.SessionID)

	s := b.Summary()
	out.WriteString("** Capital\n")
	fmt.Fprintf(&out, "| Starting  | %12s |\n", s.StartingCapital.StringFixed(2))
	fmt.Fprintf(&out, "| Deployed  | %12s |\n", s.DeployedCapital.StringFixed(2))
	fmt.Fprintf(&out, "| Available | %12s |\n", s.AvailableCapital.StringFixed(2))
	fmt.Fprintf(&out, "| Total P&L | %12s |\n\n", s.TotalPnL.StringFixed(2))

	out.WriteString("** Positions\n")
	for _, p := range b.Positions {
		out.WriteString(formatPosition(p))
	}

	if len(trades) > 0 {
		out.WriteString("\n** Closed Trades\n")
		out.WriteString(journal.FormatTradesOrg(trades))
	}

	out.WriteString("\n** Reflection\n- \n")
	return out.String()
}

func formatPosition(p book.Position) string {
	switch p.Status {
	case book.StatusAvailable:
		return fmt.Sprintf("- slot %d: available\n", p.Slot)

	case book.StatusActive:
		line := fmt.Sprintf("- slot %d: %s ×%d @ %s, last %s, stop %s, P&L %s (%d/%d portions)",
			p.Slot, p.Symbol, p.Quantity,
			p.AveragePrice.StringFixed(2), p.CurrentPrice.StringFixed(2),
			p.StopPrice.StringFixed(2), p.PnL.StringFixed(2),
			p.FilledPortions(), len(p.Portions))
		return line + annotations(p) + "\n"

	case book.StatusStopped:
		return fmt.Sprintf("- slot %d: %s stopped out, P&L %s%s\n",
			p.Slot, p.Symbol, p.PnL.StringFixed(2), annotations(p))

	case book.StatusClosed:
		return fmt.Sprintf("- slot %d: %s closed @ %s, P&L %s%s\n",
			p.Slot, p.Symbol, p.CurrentPrice.StringFixed(2),
			p.PnL.StringFixed(2), annotations(p))
	}
	return ""
}

func annotations(p book.Position) string {
	var parts []string
	if p.Grade > 0 {
		parts = append(parts, fmt.Sprintf("grade %d/5", p.Grade))
	}
	if p.Notes != "" {
		parts = append(parts, fmt.Sprintf("notes: %s", p.Notes))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, "; ") + "]"
}
