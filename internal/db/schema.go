package db

import (
	"context"
	"fmt"
	"log"
)

// tables lists the DDL for every table the portal owns, in creation order.
var tables = []struct {
	Name string
	DDL  string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	company VARCHAR(255) NOT NULL DEFAULT '',
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"pricing", `
CREATE TABLE IF NOT EXISTS pricing (
	country VARCHAR(120) NOT NULL PRIMARY KEY,
	currency VARCHAR(10) NOT NULL DEFAULT '',
	document JSON NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reference VARCHAR(32) NOT NULL,
	user_id BIGINT NOT NULL,
	country VARCHAR(120) NOT NULL,
	state VARCHAR(120) NOT NULL,
	city VARCHAR(120) NOT NULL,
	airport VARCHAR(120) NOT NULL DEFAULT '',
	cab_model VARCHAR(120) NOT NULL,
	trip_type VARCHAR(20) NOT NULL,
	flight_number VARCHAR(20) NOT NULL DEFAULT '',
	pickup_address VARCHAR(500) NOT NULL DEFAULT '',
	drop_address VARCHAR(500) NOT NULL DEFAULT '',
	pickup_at DATETIME NOT NULL,
	passengers INT NOT NULL DEFAULT 1,
	luggage INT NOT NULL DEFAULT 0,
	passenger_name VARCHAR(255) NOT NULL,
	passenger_phone VARCHAR(100) NOT NULL,
	notes TEXT,
	packages JSON,
	fare BIGINT NOT NULL DEFAULT 0,
	packages_total BIGINT NOT NULL DEFAULT 0,
	total BIGINT NOT NULL DEFAULT 0,
	currency VARCHAR(10) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
	payment_method VARCHAR(50) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_reference (reference),
	KEY idx_user (user_id),
	KEY idx_status (status),
	KEY idx_pickup (pickup_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"city_images", `
CREATE TABLE IF NOT EXISTS city_images (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	country VARCHAR(120) NOT NULL,
	city VARCHAR(120) NOT NULL,
	image_url VARCHAR(1000) NOT NULL,
	caption VARCHAR(255) NOT NULL DEFAULT '',
	sort_order INT NOT NULL DEFAULT 0,
	UNIQUE KEY uniq_country_city (country, city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

type schemaDB interface {
	QueryRower
	Execer
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, d schemaDB) error {
	for _, t := range tables {
		if HasTable(ctx, d, t.Name) {
			continue
		}
		if _, err := d.ExecContext(ctx, t.DDL); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
		log.Printf("[DB] created table %s", t.Name)
	}
	return nil
}
