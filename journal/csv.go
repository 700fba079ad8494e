package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends trade records and summary snapshots to two CSV files.
// Files are opened in append mode so each process invocation extends
// the day's record; the header row is written only on a fresh file.
type CSV struct {
	trades  *csv.Writer
	summary *csv.Writer
	tf, sf  *os.File
}

func NewCSV(tradesPath, summaryPath string) (*CSV, error) {
	tf, err := openAppend(tradesPath, []string{"trade_id", "slot", "symbol", "quantity", "average_price", "exit_price", "spend", "realized_pnl", "reason", "closed_at"})
	if err != nil {
		return nil, err
	}
	sf, err := openAppend(summaryPath, []string{"time", "starting_capital", "deployed_capital", "available_capital", "total_pnl"})
	if err != nil {
		tf.Close()
		return nil, err
	}

	return &CSV{
		trades:  csv.NewWriter(tf),
		summary: csv.NewWriter(sf),
		tf:      tf,
		sf:      sf,
	}, nil
}

func openAppend(path string, header []string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() > 0 {
		return f, nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		strconv.Itoa(t.Slot),
		t.Symbol,
		strconv.FormatInt(t.Quantity, 10),
		t.AveragePrice.String(),
		t.ExitPrice.String(),
		t.Spend.String(),
		t.RealizedPnL.String(),
		t.Reason,
		t.ClosedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordSummary(s SummarySnapshot) error {
	err := j.summary.Write([]string{
		s.Time.Format(time.RFC3339),
		s.StartingCapital.String(),
		s.DeployedCapital.String(),
		s.AvailableCapital.String(),
		s.TotalPnL.String(),
	})
	if err != nil {
		return err
	}
	j.summary.Flush()
	return j.summary.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.summary.Flush()
	if err := j.summary.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}
