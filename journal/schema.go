package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	slot INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	average_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	spend TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	reason TEXT NOT NULL,
	closed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	time DATETIME NOT NULL,
	starting_capital TEXT NOT NULL,
	deployed_capital TEXT NOT NULL,
	available_capital TEXT NOT NULL,
	total_pnl TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades(closed_at);
CREATE INDEX IF NOT EXISTS idx_summaries_time ON summaries(time);
`
