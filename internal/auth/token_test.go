package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/models"
)

func newTestTokenService(secret string, now time.Time) *TokenService {
	s := NewTokenService(config.JWTConfig{Secret: secret, Issuer: "lms-test", TTL: 24 * time.Hour})
	s.now = func() time.Time { return now }
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService("secret", now)

	for _, level := range models.AllAccessLevels {
		token, err := s.Issue("user-1", level)
		require.NoError(t, err)

		claims, err := s.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.ID)
		assert.Equal(t, level, claims.Access)
	}
}

func TestTokenService_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := newTestTokenService("secret", issuedAt).Issue("user-1", models.AccessMember)
	require.NoError(t, err)

	later := newTestTokenService("secret", issuedAt.Add(25*time.Hour))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_BadSignature(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := newTestTokenService("secret", now).Issue("user-1", models.AccessMember)
	require.NoError(t, err)

	_, err = newTestTokenService("other-secret", now).Verify(token)
	assert.ErrorIs(t, err, ErrTokenSignature)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	s := newTestTokenService("secret", time.Now())

	for _, raw := range []string{"", "not-a-token", strings.Repeat("a.", 2) + "a"} {
		_, err := s.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}

	_, err := s.Verify("garbage")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenService_TamperedPayload(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService("secret", now)

	memberToken, err := s.Issue("user-1", models.AccessMember)
	require.NoError(t, err)
	adminToken, err := s.Issue("user-1", models.AccessTechnicalAdmin)
	require.NoError(t, err)

	// header and signature of one token with the payload of another
	m := strings.Split(memberToken, ".")
	a := strings.Split(adminToken, ".")
	forged := m[0] + "." + a[1] + "." + m[2]

	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenSignature)
}
