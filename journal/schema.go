package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	strategy_id TEXT NOT NULL DEFAULT '',
	entry_price REAL NOT NULL DEFAULT 0,
	entry_quantity REAL NOT NULL DEFAULT 0,
	exit_price REAL NOT NULL DEFAULT 0,
	exit_quantity REAL NOT NULL DEFAULT 0,
	commission REAL NOT NULL DEFAULT 0,
	fees REAL NOT NULL DEFAULT 0,
	realized_pnl REAL NOT NULL DEFAULT 0,
	stop_loss REAL NOT NULL DEFAULT 0,
	take_profit REAL NOT NULL DEFAULT 0,
	entry_date TEXT,
	entry_time TEXT,
	exit_date TEXT,
	exit_time TEXT
);

CREATE INDEX IF NOT EXISTS idx_trades_entry ON trades(entry_date, entry_time);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

CREATE TABLE IF NOT EXISTS fills (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	commission REAL NOT NULL,
	side TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_trade ON fills(trade_id, seq);

CREATE TABLE IF NOT EXISTS candles (
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	ts INTEGER NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL DEFAULT 0,
	session TEXT NOT NULL DEFAULT 'REG',
	PRIMARY KEY (symbol, timeframe, ts)
);
`
