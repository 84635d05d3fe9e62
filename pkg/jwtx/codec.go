package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates what a token is good for. Access and refresh tokens
// are tied to independent per-account version counters; confirmation tokens
// are single-purpose and carry no version at all.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
	KindConfirm TokenKind = "confirm"
)

// VerifyPolicy selects how Decode treats the exp claim. The policy is an
// explicit parameter at every call site so "tolerates expiry" is a visible,
// testable decision rather than a threaded boolean.
type VerifyPolicy int

const (
	// VerifyStrict rejects tokens whose exp has passed.
	VerifyStrict VerifyPolicy = iota

	// AllowExpired accepts a cryptographically valid token past its exp.
	// Only for informational reads; never for authorization decisions.
	AllowExpired
)

var (
	// ErrMalformed reports a structurally invalid, mis-signed, or
	// wrong-algorithm token.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired reports a well-formed, correctly signed token whose exp
	// has passed.
	ErrExpired = errors.New("jwtx: token expired")
)

// Claims is the signed claim set carried by every token this service issues:
// subject (username), kind, and for access/refresh tokens the version counter
// the token was minted against.
type Claims struct {
	Kind    TokenKind `json:"knd"`
	Version int64     `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with a single process-wide secret.
// The secret must be stable across restarts or every outstanding token
// invalidates.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec signing with the given secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret is required")
	}
	return &Codec{secret: secret, now: time.Now}, nil
}

// WithClock overrides the codec's time source. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Encode signs the claims with exp = now + ttl and iat = now.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies the token's signature and structure, then applies the expiry
// policy. Signature and structure are always checked first: a token that fails
// them is ErrMalformed regardless of policy, and callers can skip any store
// lookup for it.
func (c *Codec) Decode(token string, policy VerifyPolicy) (Claims, error) {
	var claims Claims

	// Claim validation is deferred so expiry can be reported separately
	// from signature failures.
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	if claims.ExpiresAt == nil {
		return Claims{}, ErrMalformed
	}
	if policy == VerifyStrict && claims.ExpiresAt.Time.Before(c.now()) {
		return Claims{}, ErrExpired
	}

	return claims, nil
}

// Remaining reports how long until the token expires, clamped at zero. It
// decodes with AllowExpired and returns 0 on any decode failure, so it is
// safe to surface directly; it must never gate authorization.
func (c *Codec) Remaining(token string) time.Duration {
	claims, err := c.Decode(token, AllowExpired)
	if err != nil {
		return 0
	}

	left := claims.ExpiresAt.Time.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}
