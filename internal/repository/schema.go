package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		type         TEXT NOT NULL,
		default_unit TEXT NOT NULL DEFAULT '',
		sale_unit    TEXT NOT NULL DEFAULT '',
		list_price   NUMERIC NOT NULL DEFAULT 0,
		weight       NUMERIC NOT NULL DEFAULT 0,
		weight_unit  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS carriers (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		cost_method   TEXT NOT NULL,
		currency_code TEXT NOT NULL DEFAULT '',
		product_id    BIGINT REFERENCES products(id)
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_services (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		code        TEXT NOT NULL DEFAULT '',
		cost_method TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS box_types (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		code          TEXT NOT NULL DEFAULT '',
		cost_method   TEXT NOT NULL DEFAULT '',
		length        NUMERIC NOT NULL DEFAULT 0,
		width         NUMERIC NOT NULL DEFAULT 0,
		height        NUMERIC NOT NULL DEFAULT 0,
		distance_unit TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_carrier_services (
		carrier_id BIGINT NOT NULL REFERENCES carriers(id) ON DELETE CASCADE,
		service_id BIGINT NOT NULL REFERENCES carrier_services(id) ON DELETE CASCADE,
		PRIMARY KEY (carrier_id, service_id)
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_box_types (
		carrier_id  BIGINT NOT NULL REFERENCES carriers(id) ON DELETE CASCADE,
		box_type_id BIGINT NOT NULL REFERENCES box_types(id) ON DELETE CASCADE,
		PRIMARY KEY (carrier_id, box_type_id)
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_configuration (
		id                            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		default_validation_carrier_id BIGINT REFERENCES carriers(id) ON DELETE SET NULL,
		save_carrier_logs             BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		street      TEXT NOT NULL DEFAULT '',
		zip         TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT '',
		subdivision TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS warehouses (
		id                BIGSERIAL PRIMARY KEY,
		name              TEXT NOT NULL,
		address_id        BIGINT REFERENCES addresses(id),
		return_address_id BIGINT REFERENCES addresses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS tracking_numbers (
		id         BIGSERIAL PRIMARY KEY,
		number     TEXT NOT NULL,
		carrier_id BIGINT NOT NULL REFERENCES carriers(id),
		origin     TEXT NOT NULL,
		is_master  BOOLEAN NOT NULL DEFAULT false,
		url        TEXT NOT NULL DEFAULT '',
		state      TEXT NOT NULL,
		UNIQUE (carrier_id, number)
	)`,
	`CREATE INDEX IF NOT EXISTS tracking_numbers_state_idx ON tracking_numbers (state)`,
	`CREATE INDEX IF NOT EXISTS tracking_numbers_origin_idx ON tracking_numbers (origin)`,
	`CREATE TABLE IF NOT EXISTS manifests (
		id           BIGSERIAL PRIMARY KEY,
		carrier_id   BIGINT NOT NULL REFERENCES carriers(id),
		warehouse_id BIGINT NOT NULL,
		state        TEXT NOT NULL,
		close_date   TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS manifests_single_open_idx
		ON manifests (carrier_id, warehouse_id) WHERE state = 'open'`,
	`CREATE TABLE IF NOT EXISTS shipments (
		id                  BIGSERIAL PRIMARY KEY,
		reference           TEXT NOT NULL DEFAULT '',
		state               TEXT NOT NULL,
		warehouse_id        BIGINT REFERENCES warehouses(id),
		delivery_address_id BIGINT REFERENCES addresses(id),
		carrier_id          BIGINT REFERENCES carriers(id),
		service_id          BIGINT REFERENCES carrier_services(id),
		cost                NUMERIC NOT NULL DEFAULT 0,
		cost_currency       TEXT NOT NULL DEFAULT '',
		tracking_number_id  BIGINT REFERENCES tracking_numbers(id),
		manifest_id         BIGINT REFERENCES manifests(id),
		override_weight     NUMERIC NOT NULL DEFAULT 0,
		weight_unit         TEXT NOT NULL DEFAULT '',
		instructions        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS stock_moves (
		id          BIGSERIAL PRIMARY KEY,
		shipment_id BIGINT NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
		product_id  BIGINT REFERENCES products(id),
		quantity    NUMERIC NOT NULL,
		unit        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS packages (
		id                   BIGSERIAL PRIMARY KEY,
		shipment_id          BIGINT NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
		code                 TEXT NOT NULL DEFAULT '',
		box_type_id          BIGINT REFERENCES box_types(id),
		override_weight      NUMERIC NOT NULL DEFAULT 0,
		override_weight_unit TEXT NOT NULL DEFAULT '',
		length               NUMERIC NOT NULL DEFAULT 0,
		width                NUMERIC NOT NULL DEFAULT 0,
		height               NUMERIC NOT NULL DEFAULT 0,
		distance_unit        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS package_moves (
		package_id BIGINT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
		move_id    BIGINT NOT NULL REFERENCES stock_moves(id) ON DELETE CASCADE,
		position   INT NOT NULL,
		PRIMARY KEY (package_id, move_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id            BIGSERIAL PRIMARY KEY,
		reference     TEXT NOT NULL DEFAULT '',
		currency_code TEXT NOT NULL DEFAULT '',
		carrier_id    BIGINT REFERENCES carriers(id),
		service_id    BIGINT REFERENCES carrier_services(id),
		cost          NUMERIC NOT NULL DEFAULT 0,
		cost_currency TEXT NOT NULL DEFAULT '',
		weight_unit   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id            BIGSERIAL PRIMARY KEY,
		sale_id       BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id    BIGINT REFERENCES products(id),
		description   TEXT NOT NULL DEFAULT '',
		quantity      NUMERIC NOT NULL DEFAULT 0,
		unit          TEXT NOT NULL DEFAULT '',
		unit_price    NUMERIC NOT NULL DEFAULT 0,
		shipment_cost BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id        BIGSERIAL PRIMARY KEY,
		origin    TEXT NOT NULL,
		name      TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		data      BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS carrier_logs (
		id          BIGSERIAL PRIMARY KEY,
		sale_id     BIGINT REFERENCES sales(id) ON DELETE CASCADE,
		shipment_id BIGINT REFERENCES shipments(id) ON DELETE CASCADE,
		carrier_id  BIGINT NOT NULL REFERENCES carriers(id),
		log         TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK ((sale_id IS NULL) <> (shipment_id IS NULL))
	)`,
}

// EnsureSchema creates the tables and indexes the repository needs. It is idempotent.
func EnsureSchema(ctx context.Context, db querier) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
