package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tunecrate/auth/internal/auth/service"
	"github.com/tunecrate/auth/pkg/jwtx"
)

func TestRegisterAndConflict(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.False(t, account.Confirmed)
	require.NotEqual(t, "Abc12345!", account.PasswordHash)

	// Same email, different username.
	_, err = env.registration.Register(ctx, "alice2", "a@x.com", "Abc12345!")
	require.ErrorIs(t, err, service.ErrConflict)

	// Same username, different email.
	_, err = env.registration.Register(ctx, "alice", "a2@x.com", "Abc12345!")
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestRegisterSendsConfirmationMail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)

	sent := env.mailer.all()
	require.Len(t, sent, 1)
	require.Equal(t, "a@x.com", sent[0].To)
	require.Contains(t, sent[0].Body, "https://auth.test/users/confirm?token=")
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.registration.Mailer = failingMailer{}

	// Delivery failure is non-fatal; the account exists server-side.
	account, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)

	got, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestConfirmFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)

	token, err := env.registration.IssueConfirmationToken(account)
	require.NoError(t, err)

	// Confirmation tokens carry no version claim.
	claims, err := env.codec.Decode(token, jwtx.VerifyStrict)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindConfirm, claims.Kind)
	require.EqualValues(t, 0, claims.Version)

	require.NoError(t, env.registration.Confirm(ctx, token))

	got, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, got.Confirmed)
}

func TestConfirmTwiceIsSideEffectFree(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)

	token, err := env.registration.IssueConfirmationToken(account)
	require.NoError(t, err)

	require.NoError(t, env.registration.Confirm(ctx, token))

	// Token still decodes; only the already-confirmed state rejects it.
	err = env.registration.Confirm(ctx, token)
	require.ErrorIs(t, err, service.ErrAlreadyConfirmed)

	got, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, got.Confirmed)
}

func TestConfirmRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	account, err := env.registration.Register(ctx, "alice", "a@x.com", "Abc12345!")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		require.ErrorIs(t, env.registration.Confirm(ctx, "garbage"), service.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		stale := &service.RegistrationService{
			Store:      env.store,
			Codec:      expiredCodec(t),
			Mailer:     env.mailer,
			ConfirmTTL: time.Hour,
		}
		token, err := stale.IssueConfirmationToken(account)
		require.NoError(t, err)

		require.ErrorIs(t, env.registration.Confirm(ctx, token), service.ErrInvalidToken)
	})

	t.Run("access token is not a confirmation token", func(t *testing.T) {
		token, err := env.codec.Encode(jwtx.Claims{
			Kind:             jwtx.KindAccess,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		}, time.Minute)
		require.NoError(t, err)

		require.ErrorIs(t, env.registration.Confirm(ctx, token), service.ErrInvalidToken)
	})

	t.Run("vanished account", func(t *testing.T) {
		token, err := env.registration.IssueConfirmationToken(account)
		require.NoError(t, err)
		require.NoError(t, env.store.Accounts().DeleteAccount(ctx, account.ID))

		require.ErrorIs(t, env.registration.Confirm(ctx, token), service.ErrNotFound)
	})
}
