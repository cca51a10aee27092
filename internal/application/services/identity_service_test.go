package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID, role, plan string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"plan":    plan,
		"exp":     time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestResolve_NoTokenIsAnonymous(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{RemoteIP: "203.0.113.7"})

	require.Equal(t, admission.TierAnonymous, id.Tier)
	require.Equal(t, "203.0.113.7", id.IP)
	require.False(t, id.Authenticated())
	require.Equal(t, "ip:203.0.113.7", id.Key())
}

func TestResolve_ForwardedForTakesFirstEntry(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:     "10.0.0.1",
		ForwardedFor: "203.0.113.7, 10.0.0.2, 10.0.0.1",
	})

	require.Equal(t, "203.0.113.7", id.IP)
}

func TestResolve_ValidTokenIsAuthenticated(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, testSecret, "u123", "member", "free", time.Hour),
	})

	require.Equal(t, admission.TierAuthenticated, id.Tier)
	require.Equal(t, "u123", id.UserID)
	require.Equal(t, "user:u123:203.0.113.7", id.Key())
}

func TestResolve_AdminRoleMapsToAdminTier(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, testSecret, "u1", "admin", "free", time.Hour),
	})

	require.Equal(t, admission.TierAdmin, id.Tier)
}

func TestResolve_PremiumPlanMapsToPremiumTier(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, testSecret, "u1", "member", "premium", time.Hour),
	})

	require.Equal(t, admission.TierPremium, id.Tier)
}

func TestResolve_AdminRoleWinsOverPremiumPlan(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, testSecret, "u1", "super_admin", "premium", time.Hour),
	})

	require.Equal(t, admission.TierAdmin, id.Tier)
}

func TestResolve_BadSignatureDegradesToAnonymous(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, "wrong-secret", "u1", "admin", "premium", time.Hour),
	})

	require.Equal(t, admission.TierAnonymous, id.Tier)
	require.Empty(t, id.UserID)
}

func TestResolve_ExpiredTokenDegradesToAnonymous(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: signToken(t, testSecret, "u1", "member", "free", -time.Minute),
	})

	require.Equal(t, admission.TierAnonymous, id.Tier)
}

func TestResolve_GarbageTokenDegradesToAnonymous(t *testing.T) {
	svc := NewIdentityService(testSecret, logrus.New())
	id := svc.Resolve(&admission.Request{
		RemoteIP:    "203.0.113.7",
		BearerToken: "not-a-jwt",
	})

	require.Equal(t, admission.TierAnonymous, id.Tier)
}
