package auth_test

import (
	"testing"
	"time"

	"github.com/dom/twitter-clone/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer("super-secret", 30*time.Minute)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	subject, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestTokenIssuer_Expiry(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenIssuer("secret", 30*time.Minute).WithClock(func() time.Time { return issuedAt })

	tok, err := issuer.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "within ttl", at: issuedAt.Add(29 * time.Minute)},
		{name: "past expiry", at: issuedAt.Add(31 * time.Minute), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := issuer.WithClock(func() time.Time { return tt.at })
			subject, err := verifier.Verify(tok)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", subject)
		})
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer("right-secret", time.Hour)

	otherSecret, err := auth.NewTokenIssuer("wrong-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	expired, err := auth.NewTokenIssuer("right-secret", -time.Minute).Issue("u2")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u2"}).
		SignedString([]byte("right-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "different secret", token: otherSecret},
		{name: "expired", token: expired},
		{name: "missing expiry", token: noExpiry},
		{name: "missing subject", token: noSubject},
		{name: "unexpected algorithm", token: hs512},
		{name: "malformed", token: "not.a.jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			// every failure surfaces as the same error
			assert.Equal(t, auth.ErrInvalidToken, err)
		})
	}
}
