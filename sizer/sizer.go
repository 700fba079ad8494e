// Package sizer is the stand-alone position-size calculator: given
// capital, a dollar risk budget, and entry/stop prices it returns the
// maximum share count and the resulting exposure. It is stateless and
// independent of the position book; the UI recomputes it on every
// keystroke.
package sizer

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/slotbook/money"
)

// Inputs are the calculator's four fields. Negative values are clamped
// to zero on entry, so free-form input never raises an error here.
type Inputs struct {
	Capital    decimal.Decimal `json:"capital"`
	RiskBudget decimal.Decimal `json:"risk_budget"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	StopPrice  decimal.Decimal `json:"stop_price"`
}

// Result is a pure function of Inputs.
type Result struct {
	MaxShares        int64           `json:"max_shares"`
	RiskPerShare     decimal.Decimal `json:"risk_per_share"`
	PositionSize     decimal.Decimal `json:"position_size"`
	PercentRisked    decimal.Decimal `json:"percent_risked"`
	CapitalRemaining decimal.Decimal `json:"capital_remaining"`
}

// Calculate sizes a position so that a stop-out loses at most RiskBudget
// and the buy never exceeds Capital. Shares are floored; the binding
// constraint is whichever cap is smaller.
func Calculate(in Inputs) Result {
	capital := money.ClampZero(in.Capital)
	riskBudget := money.ClampZero(in.RiskBudget)
	entry := money.ClampZero(in.EntryPrice)
	stop := money.ClampZero(in.StopPrice)

	riskPerShare := money.ClampZero(entry.Sub(stop))

	var byRisk, byCapital int64
	if riskPerShare.IsPositive() {
		byRisk = riskBudget.Div(riskPerShare).IntPart()
	}
	if entry.IsPositive() {
		byCapital = capital.Div(entry).IntPart()
	}

	shares := byRisk
	if byCapital < shares {
		shares = byCapital
	}
	if shares < 0 {
		shares = 0
	}

	size := money.Cost(entry, shares)

	return Result{
		MaxShares:        shares,
		RiskPerShare:     riskPerShare,
		PositionSize:     size,
		PercentRisked:    money.Percent(money.Cost(riskPerShare, shares), capital),
		CapitalRemaining: money.ClampZero(capital.Sub(size)),
	}
}
