package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailor-backend/internal/config"
	"tailor-backend/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "tailor-test"
	cfg.JWT.ExpirationHours = 1
	return cfg
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	user := &models.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}

	token, err := m.GenerateToken(user)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "tailor-test", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testConfig())

	other := testConfig()
	other.JWT.Secret = "another-secret"
	forged, err := NewJWTManager(other).GenerateToken(&models.User{ID: "u-1"})
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, &Claims{RegisteredClaims: claims}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return token
	}
	later := jwt.NewNumericDate(time.Now().Add(time.Hour))

	for name, token := range map[string]string{
		"wrong secret": forged,
		"expired":      sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1", Issuer: "tailor-test", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}),
		"no expiry":    sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1", Issuer: "tailor-test"}),
		"no subject":   sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "tailor-test", ExpiresAt: later}),
		"other issuer": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u-1", Issuer: "elsewhere", ExpiresAt: later}),
		"other method": sign(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u-1", Issuer: "tailor-test", ExpiresAt: later}),
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("tailor-made")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "tailor-made"))
	assert.False(t, VerifyPassword(hash, "off-the-rack"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSession_SameIdentity(t *testing.T) {
	ada := &models.User{ID: "u-1", Name: "Ada"}
	adaRenamed := &models.User{ID: "u-1", Name: "Ada L."}
	grace := &models.User{ID: "u-2"}

	assert.True(t, Loading().SameIdentity(Loading()))
	assert.False(t, Loading().SameIdentity(Anonymous()))
	assert.True(t, Authenticated(ada, nil).SameIdentity(Authenticated(adaRenamed, &models.UserProfile{})))
	assert.False(t, Authenticated(ada, nil).SameIdentity(Authenticated(grace, nil)))
	assert.False(t, Authenticated(ada, nil).SameIdentity(Anonymous()))
	assert.Equal(t, StateAnonymous, Authenticated(nil, nil).State)
}

func TestSession_Context(t *testing.T) {
	assert.Equal(t, StateAnonymous, FromContext(context.Background()).State)

	ctx := WithSession(context.Background(), Authenticated(&models.User{ID: "u-9"}, nil))
	assert.Equal(t, "u-9", FromContext(ctx).UserID())
}
