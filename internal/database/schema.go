package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// MySQL executes one statement per Exec call, so the schema is kept as a
// list instead of one blob.  checkouts.item_id and audit_log.item_id carry
// no foreign key on purpose: audit entries must outlive the item they refer
// to, and returned checkouts stay behind as history after an item is
// removed.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id    BIGINT UNSIGNED PRIMARY KEY,
		username   VARCHAR(255) NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,

	`CREATE TABLE IF NOT EXISTS guild_permissions (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		guild_id   BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_guild_user (guild_id, user_id),
		CONSTRAINT fk_guild_perm_user FOREIGN KEY (user_id) REFERENCES users (user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS guild_settings (
		guild_id         BIGINT UNSIGNED PRIMARY KEY,
		guild_name       VARCHAR(200) NOT NULL,
		google_sheet_id  VARCHAR(128) NULL,
		google_sheet_url VARCHAR(512) NULL,
		updated_at       DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`,

	`CREATE TABLE IF NOT EXISTS items (
		id                 BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		guild_id           BIGINT UNSIGNED NOT NULL,
		item_name          VARCHAR(200) NOT NULL,
		quantity_total     INT NOT NULL,
		quantity_available INT NOT NULL,
		location           VARCHAR(100) NOT NULL,
		subteam            VARCHAR(100) NOT NULL,
		point_of_contact   BIGINT UNSIGNED NOT NULL,
		purchase_order     VARCHAR(500) NOT NULL,
		description        VARCHAR(1000) NULL,
		created_at         DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at         DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		KEY idx_items_guild_name (guild_id, item_name),
		CONSTRAINT chk_items_qty CHECK (quantity_available >= 0 AND quantity_available <= quantity_total)
	)`,

	`CREATE TABLE IF NOT EXISTS checkouts (
		id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		item_id              BIGINT UNSIGNED NOT NULL,
		guild_id             BIGINT UNSIGNED NOT NULL,
		user_id              BIGINT UNSIGNED NOT NULL,
		quantity             INT NOT NULL,
		checked_out_at       DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		expected_return_date DATETIME(6) NULL,
		returned_at          DATETIME(6) NULL,
		notes                VARCHAR(500) NULL,
		KEY idx_checkouts_guild_active (guild_id, returned_at),
		KEY idx_checkouts_item_active (item_id, returned_at),
		CONSTRAINT chk_checkouts_qty CHECK (quantity > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		guild_id   BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		action     VARCHAR(32) NOT NULL,
		item_id    BIGINT UNSIGNED NULL,
		details    VARCHAR(500) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_audit_guild_created (guild_id, created_at)
	)`,

	`CREATE TABLE IF NOT EXISTS service_accounts (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		secret_hash VARCHAR(255) NOT NULL,
		role        VARCHAR(16) NOT NULL DEFAULT 'BOT',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_service_accounts_name (name)
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		account_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		revoked_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_account (account_id)
	)`,
}
