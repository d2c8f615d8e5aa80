package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// migrations are re-run on every start; each statement must be idempotent.
// {{uuid}} and {{money}} are replaced by the column type of the dialect.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS site_plans (
		id           {{uuid}} PRIMARY KEY,
		name         TEXT NOT NULL,
		deposit_date TEXT,
		active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                     {{uuid}} PRIMARY KEY,
		name                   TEXT NOT NULL,
		site_plan_id           {{uuid}} REFERENCES site_plans(id),
		price_exclude_land_tax {{money}} NOT NULL,
		land_tax               {{money}} NOT NULL,
		vat_tax                {{money}} NOT NULL,
		maintenance_fee        {{money}} NOT NULL,
		management_fee         {{money}} NOT NULL,
		deposit                {{money}} NOT NULL,
		deposit_date           TEXT,
		area                   {{money}} NOT NULL,
		list_price_override    {{money}}
	)`,
	`CREATE TABLE IF NOT EXISTS discount_configs (
		id           {{uuid}} PRIMARY KEY,
		name         TEXT NOT NULL,
		kind         TEXT NOT NULL CHECK (kind IN ('PERCENT', 'FIXED_AMOUNT', 'FORMULA')),
		value        {{money}} NOT NULL,
		formula_kind TEXT NOT NULL DEFAULT '',
		min_qty      INTEGER NOT NULL DEFAULT 1,
		active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS product_discounts (
		product_id  {{uuid}} NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		discount_id {{uuid}} NOT NULL REFERENCES discount_configs(id),
		position    INTEGER NOT NULL,
		PRIMARY KEY (product_id, discount_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payment_milestones (
		id           {{uuid}} PRIMARY KEY,
		product_id   {{uuid}} NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sequence     INTEGER NOT NULL,
		kind         TEXT NOT NULL,
		due_date     TEXT,
		label        TEXT NOT NULL,
		principal    {{money}} NOT NULL,
		vat_amount   {{money}} NOT NULL,
		bank_amount  {{money}} NOT NULL,
		bank_note    TEXT NOT NULL DEFAULT '',
		folded_kinds TEXT NOT NULL DEFAULT '',
		UNIQUE (product_id, sequence)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_milestones_product ON payment_milestones(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_product_discounts_product ON product_discounts(product_id, position)`,
}

func columnTypes(driver string) *strings.Replacer {
	if driver == DriverPostgres {
		return strings.NewReplacer("{{uuid}}", "UUID", "{{money}}", "NUMERIC(20,4)")
	}
	return strings.NewReplacer("{{uuid}}", "TEXT", "{{money}}", "TEXT")
}

// Migrate runs all schema migrations
func (db *DB) Migrate(ctx context.Context) error {
	types := columnTypes(db.DriverName())
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
