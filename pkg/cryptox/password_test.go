package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tunecrate/auth/pkg/cryptox"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := cryptox.HashPassword("Abc12345!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$"))

	require.NoError(t, cryptox.VerifyPassword("Abc12345!", digest))
	require.ErrorIs(t, cryptox.VerifyPassword("wrong-password", digest), cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)
	second, err := cryptox.HashPassword("same-input")
	require.NoError(t, err)

	// Different digests, both verify.
	require.NotEqual(t, first, second)
	require.NoError(t, cryptox.VerifyPassword("same-input", first))
	require.NoError(t, cryptox.VerifyPassword("same-input", second))
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	cases := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"garbage", "not-a-digest"},
		{"wrong scheme", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=abc$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{"bad hash encoding", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$!!!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, cryptox.VerifyPassword("anything", tc.digest))
		})
	}
}
