package database

// dropOrder respeita as chaves estrangeiras (dependentes primeiro)
var dropOrder = []string{"alerts", "cart", "seller_prices", "sellers", "news", "products", "users"}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fname TEXT NOT NULL DEFAULT '',
		lname TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		pswd TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		msrp REAL NOT NULL DEFAULT 0,
		tracking_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_tracking_url ON products (tracking_url) WHERE tracking_url <> ''`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		cutoff REAL NOT NULL DEFAULT 0,
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS seller_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		seller_id INTEGER NOT NULL REFERENCES sellers (id) ON DELETE CASCADE,
		price REAL NOT NULL,
		observed_at DATETIME NOT NULL,
		source_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seller_prices_product ON seller_prices (product_id, observed_at)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		observation_id INTEGER NOT NULL REFERENCES seller_prices (id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_user_product ON alerts (user_id, product_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		published_at DATETIME NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		fname VARCHAR(50) NOT NULL DEFAULT '',
		lname VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL UNIQUE,
		pswd VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		msrp NUMERIC(10, 2) NOT NULL DEFAULT 0,
		tracking_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_tracking_url ON products (tracking_url) WHERE tracking_url <> ''`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		address VARCHAR(255) NOT NULL DEFAULT '',
		url VARCHAR(500) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		cutoff NUMERIC(10, 2) NOT NULL DEFAULT 0,
		UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS seller_prices (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		seller_id BIGINT NOT NULL REFERENCES sellers (id) ON DELETE CASCADE,
		price NUMERIC(10, 2) NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL,
		source_url VARCHAR(500) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seller_prices_product ON seller_prices (product_id, observed_at)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		observation_id BIGINT NOT NULL REFERENCES seller_prices (id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_user_product ON alerts (user_id, product_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS news (
		id BIGSERIAL PRIMARY KEY,
		category VARCHAR(100) NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		published_at TIMESTAMPTZ NOT NULL
	)`,
}
