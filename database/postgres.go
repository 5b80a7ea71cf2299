package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(connString string) (*DB, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Migrate() error {
	ctx := context.Background()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			api_token TEXT,
			deleted_at TIMESTAMP WITH TIME ZONE
		)`,

		`CREATE TABLE IF NOT EXISTS customer (
			customer_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			title VARCHAR(20),
			last_name VARCHAR(100) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			address TEXT,
			city VARCHAR(100),
			zipcode VARCHAR(20),
			phone VARCHAR(30),
			image_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customer_user_id ON customer(user_id)`,

		`CREATE TABLE IF NOT EXISTS items (
			item_id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			category VARCHAR(100) NOT NULL,
			cost_price NUMERIC(12,2),
			sell_price NUMERIC(12,2),
			show_item VARCHAR(3) NOT NULL DEFAULT 'yes'
		)`,

		`CREATE TABLE IF NOT EXISTS items_images (
			image_id BIGSERIAL PRIMARY KEY,
			item_id BIGINT NOT NULL REFERENCES items(item_id) ON DELETE CASCADE,
			image_path TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_images_item_id ON items_images(item_id)`,

		// quantity >= 0 is enforced both here and by the conditional
		// decrement during order placement.
		`CREATE TABLE IF NOT EXISTS stock (
			item_id BIGINT PRIMARY KEY REFERENCES items(item_id),
			quantity BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			order_id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customer(customer_id),
			date_ordered TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			date_delivery TIMESTAMP WITH TIME ZONE,
			status VARCHAR(20) NOT NULL DEFAULT 'processing',
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,

		`CREATE TABLE IF NOT EXISTS orderline (
			order_id BIGINT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			item_id BIGINT NOT NULL REFERENCES items(item_id),
			quantity BIGINT NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (order_id, item_id)
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
