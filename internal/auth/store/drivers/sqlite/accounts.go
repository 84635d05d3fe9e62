package sqlite

import (
	"context"
	"time"

	"github.com/tunecrate/auth/internal/auth/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, username, email, password_hash, role, confirmed,
access_token_version, refresh_token_version,
reset_token_hash, reset_token_expires_at, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByResetTokenHash(ctx context.Context, hash string) (domain.Account, error) {
	// reset_token_hash carries a partial unique index, so this is a point
	// lookup rather than a scan over outstanding resets.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE reset_token_hash = ?`, hash)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := toMillis(time.Now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			id, username, email, password_hash, role, confirmed,
			access_token_version, refresh_token_version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.Role, now, now)

	return mapConflict(err)
}

func (r *accountsRepo) MarkConfirmed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET confirmed = 1, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) BumpTokenVersions(ctx context.Context, id string) (int64, int64, error) {
	// Single statement so concurrent logouts cannot lose an increment.
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		 SET access_token_version = access_token_version + 1,
		     refresh_token_version = refresh_token_version + 1,
		     updated_at = ?
		 WHERE id = ?
		 RETURNING access_token_version, refresh_token_version`,
		toMillis(time.Now()), id)

	var access, refresh int64
	if err := row.Scan(&access, &refresh); err != nil {
		return 0, 0, mapNotFound(err)
	}
	return access, refresh, nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) SetPendingReset(ctx context.Context, id string, hash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		hash, toMillis(expiresAt), toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) ClearPendingReset(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		 WHERE id = ?`,
		toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) ResetPassword(ctx context.Context, id string, newHash string) error {
	// Password rewrite and reset-field clearing are one statement; the
	// fields can never survive a successful reset.
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL,
		     updated_at = ?
		 WHERE id = ?`,
		newHash, toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteUnconfirmedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE confirmed = 0 AND created_at < ?`,
		toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
