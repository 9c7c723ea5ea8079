package auth

import (
	"testing"
	"time"

	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.AuthConfig{
		Enabled: true,
		Secret:  testSecret,
		Issuer:  "constructora-identity",
	})
}

func TestJWTService_SignAndVerify(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.Sign("u-17", "  Laura Gómez ", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Laura Gómez", claims.Actor())
	assert.Equal(t, "u-17", claims.Subject)
	assert.Equal(t, "constructora-identity", claims.Issuer)
}

func TestJWTService_Verify_Rejections(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims *Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "constructora-identity",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			Name: "Laura Gómez",
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	future := valid()
	future.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))

	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	anonymous := valid()
	anonymous.Name = "   "

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("another-secret-key-of-32-chars!!"), valid()), ErrInvalidToken},
		{"wrong algorithm", sign(jwt.SigningMethodHS512, []byte(testSecret), valid()), ErrInvalidToken},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), expired), ErrExpiredToken},
		{"not yet valid", sign(jwt.SigningMethodHS256, []byte(testSecret), future), ErrTokenNotYetValid},
		{"other issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), otherIssuer), ErrInvalidToken},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry), ErrInvalidToken},
		{"no actor name", sign(jwt.SigningMethodHS256, []byte(testSecret), anonymous), ErrMissingActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTService_Leeway(t *testing.T) {
	svc := NewJWTService(config.AuthConfig{Secret: testSecret, Leeway: time.Minute})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second))},
		Name:             "Laura Gómez",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.NoError(t, err)
}
