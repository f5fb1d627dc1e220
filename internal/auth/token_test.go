package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func testStaff() *domain.StaffMember {
	return &domain.StaffMember{
		ID:    "staff-1",
		Email: "lead@example.com",
		Role:  domain.StaffRoleTeamLead,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
	}, "helpdesk-test")

	signed, expiresAt, err := tokens.Issue(testStaff())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "lead@example.com", claims.Email)
	assert.Equal(t, domain.StaffRoleTeamLead, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager(config.AuthConfig{JWTSecret: "secret-a", AccessTokenTTLMinutes: 30}, "helpdesk-test")
	verifier := NewTokenManager(config.AuthConfig{JWTSecret: "secret-b", AccessTokenTTLMinutes: 30}, "helpdesk-test")

	signed, _, err := issuer.Issue(testStaff())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30}, "helpdesk-test")
	tokens.ttl = -time.Minute

	signed, _, err := tokens.Issue(testStaff())
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}
