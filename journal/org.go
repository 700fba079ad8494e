package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for
// pasting into a daily reflection journal. Structured facts live in a
// PROPERTIES drawer for easy search; the narrative sections are left for
// the operator to fill in.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s slot %d (%s)", t.Symbol, t.Slot, shortID(t.TradeID))
	closed := t.ClosedAt.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":SLOT: %d\n", t.Slot))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":AVERAGE_PRICE: %s\n", t.AveragePrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %s\n", t.ExitPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":SPEND: %s\n", t.Spend.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REALIZED_PNL: %s\n", t.RealizedPnL.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REASON: %s\n", t.Reason))
	b.WriteString(fmt.Sprintf(":CLOSED_AT: %s\n", closed))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
