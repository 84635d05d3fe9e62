package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tunecrate/auth/internal/auth/domain"
	"github.com/tunecrate/auth/internal/auth/store"
	"github.com/tunecrate/auth/pkg/cryptox"
	"github.com/tunecrate/auth/pkg/idx"
	"github.com/tunecrate/auth/pkg/jwtx"
	"github.com/tunecrate/auth/pkg/slogx"
)

// RegistrationService creates accounts and drives the email confirmation
// flow. New accounts start unconfirmed with both version counters at zero and
// are subject to the sweeper until confirmed.
type RegistrationService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	Mailer     Mailer
	ConfirmTTL time.Duration
	BaseURL    string
}

// Register creates an unconfirmed account and dispatches the confirmation
// email. A taken username or email fails with ErrConflict. Mail delivery
// failure does not fail the registration.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (domain.Account, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleMember,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrConflict
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	l := slogx.FromContext(ctx)
	l.Info("account registered", slog.String("username", username))

	token, err := s.IssueConfirmationToken(account)
	if err != nil {
		l.Warn("confirmation token not issued", slog.String("username", username), slog.Any("error", err))
		return account, nil
	}

	link := fmt.Sprintf("%s/users/confirm?token=%s", s.BaseURL, token)
	body := fmt.Sprintf(`<p>Thank you for registering!</p><p><a href=%q>Confirm your email</a> within %s.</p>`,
		link, s.ConfirmTTL)
	if err := s.Mailer.Send(ctx, email, "Registration confirmation", body); err != nil {
		l.Warn("confirmation mail delivery failed", slog.String("username", username), slog.Any("error", err))
	}

	return account, nil
}

// IssueConfirmationToken mints a single-purpose confirmation token. It
// carries no version claim: confirmation tokens are outside the
// revocation-counter scheme and die only by TTL.
func (s *RegistrationService) IssueConfirmationToken(account domain.Account) (string, error) {
	return s.Codec.Encode(jwtx.Claims{
		Kind: jwtx.KindConfirm,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: account.Username,
		},
	}, s.ConfirmTTL)
}

// Confirm validates a confirmation token and marks the account confirmed.
// Expired, malformed, and wrong-kind tokens fail with ErrInvalidToken; a
// vanished account fails with ErrNotFound. Re-confirming with a still-valid
// token fails with ErrAlreadyConfirmed and changes nothing.
func (s *RegistrationService) Confirm(ctx context.Context, token string) error {
	claims, err := s.Codec.Decode(token, jwtx.VerifyStrict)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Kind != jwtx.KindConfirm {
		return ErrInvalidToken
	}

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.Confirmed {
		return ErrAlreadyConfirmed
	}

	if err := s.Store.Accounts().MarkConfirmed(ctx, account.ID); err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}

	slogx.FromContext(ctx).Info("account confirmed", slog.String("username", account.Username))
	return nil
}
