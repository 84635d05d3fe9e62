package domain

import "time"

// Role is the account capability level. It is read by collaborator
// authorization checks; nothing in this core mutates it.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Account is the central persisted entity. Username and email are immutable
// after creation; the version counters only ever increase.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id encoded, never the plaintext
	Role         Role

	// Confirmed transitions false -> true exactly once via the
	// confirmation flow. Unconfirmed accounts past the grace period are
	// deleted by the sweeper.
	Confirmed bool

	// AccessTokenVersion and RefreshTokenVersion start at 0 and are bumped
	// together on logout. A token is valid only while the version embedded
	// in it matches the stored value.
	AccessTokenVersion  int64
	RefreshTokenVersion int64

	// PendingReset is non-nil only while a password reset is outstanding.
	PendingReset *PendingReset

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingReset holds the hashed reset secret and its expiry as a unit, so the
// two fields can never desynchronize.
type PendingReset struct {
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
}

// Expired reports whether the reset window has elapsed at the given instant.
func (p *PendingReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
