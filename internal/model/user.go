package model

import "time"

// Staff roles. Admin can do everything including user and settings
// management; Manager additionally handles expenses; Member is the
// baseline back-office role.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleMember  = "Member"
)

// ValidRole reports whether s is one of the known staff roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleManager || s == RoleMember
}

// User represents a back-office account as stored in the `users`
// table. PasswordHash is a bcrypt digest and never leaves the
// repository layer; handlers use separate response types.
type User struct {
	ID           uint64    `json:"id"`    // users.id
	Email        string    `json:"email"` // users.email (unique)
	PasswordHash string    `json:"-"`     // users.password_hash
	Name         string    `json:"name"`  // users.name
	Role         string    `json:"role"`  // users.role (Admin|Manager|Member)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models a row in `refresh_tokens`. Only the SHA-256
// hash of the raw token is stored; the raw value goes back to the
// client once and is never persisted.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
}
