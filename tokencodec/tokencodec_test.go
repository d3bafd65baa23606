// tokencodec/tokencodec_test.go
package tokencodec

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintToken builds a signed HS256 token carrying the provided claims. The signature is
// irrelevant to the codec, which never verifies it, but a real signing pass produces
// structurally correct tokens.
func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestDecodeReturnsClaims(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub":   "user-42",
		"admin": true,
		"exp":   float64(time.Now().Add(time.Hour).Unix()),
	})

	claims, err := Decode(token)
	require.NoError(t, err)

	sub, ok := ClaimAs[string](claims, "sub")
	assert.True(t, ok)
	assert.Equal(t, "user-42", sub)

	admin, ok := ClaimAs[bool](claims, "admin")
	assert.True(t, ok)
	assert.True(t, admin)
}

func TestDecodeMalformedTokens(t *testing.T) {
	nonJSONPayload := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"missing segments", "only-one-segment"},
		{"two segments", "part1.part2"},
		{"invalid base64url", "!!!.@@@.###"},
		{"non-JSON payload", nonJSONPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()

	t.Run("future expiry is not expired", func(t *testing.T) {
		token := mintToken(t, jwt.MapClaims{"exp": float64(now.Add(time.Hour).Unix())})
		assert.False(t, IsExpired(token))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		token := mintToken(t, jwt.MapClaims{"exp": float64(now.Add(-time.Hour).Unix())})
		assert.True(t, IsExpired(token))
	})

	t.Run("expiry exactly now is expired", func(t *testing.T) {
		at := time.Unix(now.Unix(), 0)
		token := mintToken(t, jwt.MapClaims{"exp": float64(at.Unix())})
		assert.True(t, isExpiredAt(token, at))
	})

	t.Run("missing expiry claim is expired", func(t *testing.T) {
		token := mintToken(t, jwt.MapClaims{"sub": "user-42"})
		assert.True(t, IsExpired(token))
	})

	t.Run("malformed token is expired", func(t *testing.T) {
		assert.True(t, IsExpired("garbage"))
	})
}

func TestExpiresAt(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := mintToken(t, jwt.MapClaims{"exp": float64(expiry.Unix())})

	claims, err := Decode(token)
	require.NoError(t, err)

	got, ok := ExpiresAt(claims)
	require.True(t, ok)
	assert.True(t, got.Equal(expiry))

	_, ok = ExpiresAt(Claims{})
	assert.False(t, ok)
}
