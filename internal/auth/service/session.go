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
	"github.com/tunecrate/auth/pkg/jwtx"
	"github.com/tunecrate/auth/pkg/slogx"
)

// SessionService issues, verifies, and revokes access/refresh token pairs.
//
// Revocation works through per-account version counters rather than a
// denylist: a token is accepted only while the version it carries matches the
// stored counter, and logout bumps both counters. The access TTL is kept
// minutes-scale so revocation latency for tokens already in flight is bounded
// by the TTL.
type SessionService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Authenticate resolves the account for a username/password pair. Unknown
// usernames and wrong passwords fail identically with ErrInvalidCredentials;
// a correct pair on an unconfirmed account fails with ErrNotConfirmed.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	// Hashing is CPU-bound and deliberately slow; nothing is locked here.
	if cryptox.VerifyPassword(password, account.PasswordHash) != nil {
		slogx.FromContext(ctx).Info("authentication failed", slog.String("username", username))
		return domain.Account{}, ErrInvalidCredentials
	}

	if !account.Confirmed {
		return domain.Account{}, ErrNotConfirmed
	}

	return account, nil
}

// Login authenticates and, on success, issues a fresh token pair.
func (s *SessionService) Login(ctx context.Context, username, password string) (domain.Account, domain.TokenPair, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("login succeeded", slog.String("username", username))
	return account, pair, nil
}

// IssueAccessToken mints a short-lived access token bound to the account's
// current access version counter.
func (s *SessionService) IssueAccessToken(account domain.Account) (string, error) {
	return s.Codec.Encode(jwtx.Claims{
		Kind:    jwtx.KindAccess,
		Version: account.AccessTokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: account.Username,
		},
	}, s.AccessTTL)
}

// IssueRefreshToken mints a long-lived refresh token bound to the account's
// current refresh version counter.
func (s *SessionService) IssueRefreshToken(account domain.Account) (string, error) {
	return s.Codec.Encode(jwtx.Claims{
		Kind:    jwtx.KindRefresh,
		Version: account.RefreshTokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: account.Username,
		},
	}, s.RefreshTTL)
}

func (s *SessionService) issuePair(account domain.Account) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(account)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.IssueRefreshToken(account)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// VerifyAccessToken checks an access token and returns the live account it
// belongs to. The check is strict about expiry: an expired token fails with
// ErrTokenExpired even when its signature and version are fine, and callers
// that want silent-refresh UX go through Refresh instead. Signature and
// structure checks happen before any store lookup.
//
// Outcomes: ErrTokenMalformed, ErrTokenExpired, ErrTokenRevoked, or the
// account.
func (s *SessionService) VerifyAccessToken(ctx context.Context, token string) (domain.Account, error) {
	claims, err := s.Codec.Decode(token, jwtx.VerifyStrict)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Account{}, ErrTokenExpired
		}
		return domain.Account{}, ErrTokenMalformed
	}
	if claims.Kind != jwtx.KindAccess {
		return domain.Account{}, ErrTokenMalformed
	}

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrTokenRevoked
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	if claims.Version != account.AccessTokenVersion {
		return domain.Account{}, ErrTokenRevoked
	}

	return account, nil
}

// Refresh exchanges a valid refresh token for a fresh access/refresh pair.
// Expired, malformed, revoked, and wrong-kind tokens all fail uniformly with
// ErrInvalidRefresh. The old refresh token stays structurally valid until its
// own TTL lapses (there is no denylist); handing out a new one every exchange
// encourages rotation.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Codec.Decode(refreshToken, jwtx.VerifyStrict)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if claims.Kind != jwtx.KindRefresh {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, fmt.Errorf("lookup account: %w", err)
	}

	if claims.Version != account.RefreshTokenVersion {
		slogx.FromContext(ctx).Info("refresh rejected: stale version",
			slog.String("username", account.Username))
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	return s.issuePair(account)
}

// Logout atomically bumps both version counters, instantly invalidating every
// previously issued access and refresh token for the account regardless of
// embedded expiry. Returns the account with the new counters applied.
func (s *SessionService) Logout(ctx context.Context, account domain.Account) (domain.Account, error) {
	access, refresh, err := s.Store.Accounts().BumpTokenVersions(ctx, account.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("bump token versions: %w", err)
	}

	account.AccessTokenVersion = access
	account.RefreshTokenVersion = refresh

	slogx.FromContext(ctx).Info("logout", slog.String("username", account.Username))
	return account, nil
}
