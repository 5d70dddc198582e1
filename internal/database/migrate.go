package database

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          VARCHAR(64)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT         NOT NULL,
		category    VARCHAR(64)  NOT NULL,
		image       TEXT         NOT NULL,
		rating      DOUBLE       NOT NULL DEFAULT 0,
		price       DOUBLE       NOT NULL DEFAULT 0,
		stock       INT          NOT NULL DEFAULT 0,
		created_at  DATETIME(3)  NOT NULL,
		INDEX idx_products_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(64)  NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
		avatar        TEXT         NOT NULL,
		phone         VARCHAR(64)  NOT NULL DEFAULT '',
		address       TEXT         NOT NULL,
		created_at    DATETIME(3)  NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         VARCHAR(64) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		items      JSON        NOT NULL,
		total      DOUBLE      NOT NULL,
		status     VARCHAR(16) NOT NULL,
		created_at DATETIME(3) NOT NULL,
		INDEX idx_orders_user_created (user_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sale_events (
		id                  VARCHAR(64)  NOT NULL PRIMARY KEY,
		title               VARCHAR(255) NOT NULL,
		description         TEXT         NOT NULL,
		discount_percentage DOUBLE       NOT NULL DEFAULT 0,
		start_date          DATETIME(3)  NOT NULL,
		end_date            DATETIME(3)  NOT NULL,
		image               TEXT         NOT NULL,
		is_active           BOOLEAN      NOT NULL DEFAULT TRUE,
		type                VARCHAR(16)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          VARCHAR(64)      PRIMARY KEY,
		name        VARCHAR(255)     NOT NULL,
		description TEXT             NOT NULL,
		category    VARCHAR(64)      NOT NULL,
		image       TEXT             NOT NULL,
		rating      DOUBLE PRECISION NOT NULL DEFAULT 0,
		price       DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock       INTEGER          NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created ON products (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(64)  PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
		avatar        TEXT         NOT NULL DEFAULT '',
		phone         VARCHAR(64)  NOT NULL DEFAULT '',
		address       TEXT         NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         VARCHAR(64)      PRIMARY KEY,
		user_id    VARCHAR(64)      NOT NULL,
		items      JSONB            NOT NULL,
		total      DOUBLE PRECISION NOT NULL,
		status     VARCHAR(16)      NOT NULL,
		created_at TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_events (
		id                  VARCHAR(64)      PRIMARY KEY,
		title               VARCHAR(255)     NOT NULL,
		description         TEXT             NOT NULL,
		discount_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		start_date          TIMESTAMPTZ      NOT NULL,
		end_date            TIMESTAMPTZ      NOT NULL,
		image               TEXT             NOT NULL,
		is_active           BOOLEAN          NOT NULL DEFAULT TRUE,
		type                VARCHAR(16)      NOT NULL
	)`,
}

// Migrate creates any missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *DB) error {
	stmts := mysqlSchema
	if db.Driver == Postgres {
		stmts = postgresSchema
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("database: migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
