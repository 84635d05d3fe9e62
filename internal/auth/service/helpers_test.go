package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tunecrate/auth/internal/auth/domain"
	"github.com/tunecrate/auth/internal/auth/service"
	"github.com/tunecrate/auth/internal/auth/store/drivers/sqlite"
	"github.com/tunecrate/auth/pkg/jwtx"
)

const testSigningSecret = "test-signing-secret"

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer captures outbound mail for assertions.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	return context.DeadlineExceeded
}

type testEnv struct {
	store        *sqlite.Store
	codec        *jwtx.Codec
	mailer       *recordingMailer
	sessions     *service.SessionService
	registration *service.RegistrationService
	reset        *service.PasswordResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte(testSigningSecret))
	require.NoError(t, err)

	mailer := &recordingMailer{}

	return &testEnv{
		store:  st,
		codec:  codec,
		mailer: mailer,
		sessions: &service.SessionService{
			Store:      st,
			Codec:      codec,
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		registration: &service.RegistrationService{
			Store:      st,
			Codec:      codec,
			Mailer:     mailer,
			ConfirmTTL: time.Hour,
			BaseURL:    "https://auth.test",
		},
		reset: &service.PasswordResetService{
			Store:    st,
			Mailer:   mailer,
			ResetTTL: time.Hour,
		},
	}
}

// registerConfirmed registers an account and completes its confirmation flow.
func (e *testEnv) registerConfirmed(t *testing.T, username, email, password string) domain.Account {
	t.Helper()
	ctx := context.Background()

	account, err := e.registration.Register(ctx, username, email, password)
	require.NoError(t, err)

	token, err := e.registration.IssueConfirmationToken(account)
	require.NoError(t, err)
	require.NoError(t, e.registration.Confirm(ctx, token))

	account.Confirmed = true
	return account
}

// expiredCodec returns a codec sharing the test secret whose clock sits in
// the past, for minting already-expired tokens.
func expiredCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec([]byte(testSigningSecret))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	return codec.WithClock(func() time.Time { return past })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
