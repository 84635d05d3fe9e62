package store

import (
	"context"
	"errors"
	"time"

	"github.com/tunecrate/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Every method is transactional per call; multi-step
// operations that must be atomic go through Tx/WithTx.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Preferred over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the narrow adapter the auth core uses against the account
// table. Mutations to a single account are single atomic statements so
// concurrent callers cannot lose writes.
type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during login and token verification.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail is used by the password reset flow.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByResetTokenHash resolves an outstanding reset by the
	// fingerprint of its secret. Indexed lookup, never a scan.
	GetAccountByResetTokenHash(ctx context.Context, hash string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// MarkConfirmed sets the confirmed flag. Safe to call on an already
	// confirmed account.
	MarkConfirmed(ctx context.Context, id string) error

	// BumpTokenVersions atomically increments both version counters by one
	// and returns the new values. Concurrent bumps never lose an increment.
	BumpTokenVersions(ctx context.Context, id string) (access, refresh int64, err error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error

	// SetPendingReset writes the reset fingerprint and expiry as a unit,
	// replacing any previous outstanding reset for the account.
	SetPendingReset(ctx context.Context, id string, hash string, expiresAt time.Time) error

	// ClearPendingReset nulls both reset fields.
	ClearPendingReset(ctx context.Context, id string) error

	// ResetPassword rewrites the password hash and clears both reset
	// fields in a single statement.
	ResetPassword(ctx context.Context, id string, newHash string) error

	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, id string) error

	// DeleteUnconfirmedCreatedBefore removes every unconfirmed account
	// created before the cutoff and reports how many were deleted. The
	// confirmed filter lives in the statement itself, so a confirmation
	// committed just before the sweep is never undone.
	DeleteUnconfirmedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
