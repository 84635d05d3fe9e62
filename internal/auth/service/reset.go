package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tunecrate/auth/internal/auth/domain"
	"github.com/tunecrate/auth/internal/auth/store"
	"github.com/tunecrate/auth/pkg/cryptox"
	"github.com/tunecrate/auth/pkg/slogx"
)

// PasswordResetService issues single-use, expiring reset secrets and
// exchanges them for a password change.
//
// Only the SHA-256 fingerprint of a secret is ever stored; the plaintext
// exists once, in the return value of RequestReset, for one-time delivery.
// The fingerprint column is uniquely indexed, so a secret resolves to its
// account with a point lookup and concurrent outstanding resets on different
// accounts cannot collide.
type PasswordResetService struct {
	Store    store.Store
	Mailer   Mailer
	ResetTTL time.Duration
}

// RequestReset starts a reset for the account behind the email. Unknown
// emails fail with ErrNotFound and store nothing. A repeated request
// replaces the previous outstanding secret.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}

	secret, err := cryptox.GenerateSecret(cryptox.SecretSize)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.ResetTTL)
	if err := s.Store.Accounts().SetPendingReset(ctx, account.ID, cryptox.FingerprintSecret(secret), expiresAt); err != nil {
		return "", fmt.Errorf("store pending reset: %w", err)
	}

	l := slogx.FromContext(ctx)
	l.Info("password reset requested", slog.String("username", account.Username))

	if s.Mailer != nil {
		body := fmt.Sprintf(`<p>A password reset was requested for your account. The code below is valid for %s.</p><p><code>%s</code></p>`,
			s.ResetTTL, secret)
		if err := s.Mailer.Send(ctx, email, "Password reset", body); err != nil {
			l.Warn("reset mail delivery failed", slog.String("username", account.Username), slog.Any("error", err))
		}
	}

	return secret, nil
}

// VerifyResetToken resolves a reset secret to its account. Unknown, consumed,
// and expired secrets fail uniformly with ErrResetInvalid.
func (s *PasswordResetService) VerifyResetToken(ctx context.Context, secret string) (domain.Account, error) {
	return s.verify(ctx, s.Store, secret)
}

func (s *PasswordResetService) verify(ctx context.Context, st store.Store, secret string) (domain.Account, error) {
	account, err := st.Accounts().GetAccountByResetTokenHash(ctx, cryptox.FingerprintSecret(secret))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrResetInvalid
		}
		return domain.Account{}, fmt.Errorf("lookup reset: %w", err)
	}

	if account.PendingReset == nil || account.PendingReset.Expired(time.Now()) {
		return domain.Account{}, ErrResetInvalid
	}

	return account, nil
}

// ResetPassword exchanges a valid secret for a password change. The secret is
// re-verified, the new hash written, and both reset fields cleared inside one
// transaction, so a secret can never survive the change it authorized. The
// new password is hashed before the transaction opens.
func (s *PasswordResetService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var username string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := s.verify(ctx, tx, secret)
		if err != nil {
			return err
		}
		username = account.Username
		return tx.Accounts().ResetPassword(ctx, account.ID, hash)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset completed", slog.String("username", username))
	return nil
}
