package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	amount REAL NOT NULL,
	rate REAL NOT NULL,
	total REAL NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);

CREATE TABLE IF NOT EXISTS rate_history (
	id TEXT PRIMARY KEY,
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	rate REAL NOT NULL,
	timestamp DATETIME NOT NULL,
	source TEXT NOT NULL,
	sync_sources TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rate_history_pair ON rate_history(from_currency, to_currency);
`
