package model

import "time"

// ServiceAccount is an API client (a bot process or dashboard) allowed
// to call the service.  Only the bcrypt hash of its secret is stored.
type ServiceAccount struct {
	ID         uint64    // service_accounts.id
	Name       string    // service_accounts.name (unique)
	SecretHash string    // service_accounts.secret_hash
	Role       string    // service_accounts.role (BOT or ADMIN)
	IsActive   bool      // service_accounts.is_active
	CreatedAt  time.Time // service_accounts.created_at
	UpdatedAt  time.Time // service_accounts.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a service account and contains metadata for
// expiry and revocation.  The plain token is not stored; only its
// SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
