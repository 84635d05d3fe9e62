package service

import "errors"

// Caller-visible outcomes. All of these are recoverable; store connectivity
// failures are the only fatal class and propagate unconverted.
var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password, deliberately conflated to prevent user enumeration.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrNotConfirmed means the credentials were right but the account has
	// not completed email confirmation.
	ErrNotConfirmed = errors.New("account_not_confirmed")

	// ErrConflict reports a duplicate username or email at registration.
	ErrConflict = errors.New("username_or_email_taken")

	// ErrNotFound reports that no account matches.
	ErrNotFound = errors.New("account_not_found")

	// Token-check outcomes, one per rejected state.
	ErrTokenMalformed = errors.New("token_malformed")
	ErrTokenExpired   = errors.New("token_expired")
	ErrTokenRevoked   = errors.New("token_revoked") // version mismatch or vanished account

	// ErrInvalidRefresh covers every refresh-exchange failure uniformly.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrInvalidToken reports an expired or malformed confirmation token.
	ErrInvalidToken = errors.New("invalid_confirmation_token")

	// ErrAlreadyConfirmed means the confirmation token was valid but the
	// account had already been confirmed; no state changed.
	ErrAlreadyConfirmed = errors.New("already_confirmed")

	// ErrResetInvalid covers unknown, consumed, and expired reset secrets
	// uniformly so the caller cannot tell which part failed.
	ErrResetInvalid = errors.New("reset_token_invalid_or_expired")
)
