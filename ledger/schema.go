package ledger

// SQLiteSchema stores money as TEXT so decimals round-trip exactly.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	balance TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	origin TEXT NOT NULL,
	environment TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	order_type TEXT NOT NULL,
	timing TEXT NOT NULL,
	ts DATETIME NOT NULL,
	transaction_id TEXT NOT NULL UNIQUE REFERENCES transactions(id),
	environment TEXT NOT NULL,
	origin TEXT NOT NULL,
	security_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	value TEXT NOT NULL,
	UNIQUE (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS trade_lots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	position_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	trade_date DATETIME NOT NULL,
	liquidating BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trade_lots_account_symbol ON trade_lots(account_id, symbol, trade_date);

CREATE TABLE IF NOT EXISTS queued_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	order_type TEXT NOT NULL,
	timing TEXT NOT NULL,
	origin TEXT NOT NULL,
	order_date TEXT NOT NULL,
	is_open BOOLEAN NOT NULL,
	close_reason TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queued_orders_date ON queued_orders(order_date, is_open);

CREATE TABLE IF NOT EXISTS market_holidays (
	holiday_date TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	balance NUMERIC NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	origin TEXT NOT NULL,
	environment TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	price NUMERIC NOT NULL,
	order_type TEXT NOT NULL,
	timing TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	transaction_id TEXT NOT NULL UNIQUE REFERENCES transactions(id),
	environment TEXT NOT NULL,
	origin TEXT NOT NULL,
	security_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	symbol TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	value NUMERIC NOT NULL,
	UNIQUE (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS trade_lots (
	id BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	position_id BIGINT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	price NUMERIC NOT NULL,
	trade_date TIMESTAMPTZ NOT NULL,
	liquidating BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trade_lots_account_symbol ON trade_lots(account_id, symbol, trade_date);

CREATE TABLE IF NOT EXISTS queued_orders (
	id BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	order_type TEXT NOT NULL,
	timing TEXT NOT NULL,
	origin TEXT NOT NULL,
	order_date TEXT NOT NULL,
	is_open BOOLEAN NOT NULL,
	close_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queued_orders_date ON queued_orders(order_date, is_open);

CREATE TABLE IF NOT EXISTS market_holidays (
	holiday_date TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
`
