package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/auth"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func registered(subject string, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    auth.Issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	}
}

func TestJWTManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)
	actor := domain.Actor{ID: "mgr-1", OrgID: "org-1", Roles: []string{domain.RoleManager}}

	token, err := manager.Generate(actor)
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Issuer, claims.Issuer)
	assert.Equal(t, actor, claims.Actor())
}

func TestJWTManagerRefusesSystemActor(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	_, err := manager.Generate(domain.SystemActor())
	assert.ErrorIs(t, err, domain.ErrActionNotPermitted)
	_, err = manager.Generate(domain.Actor{})
	assert.ErrorIs(t, err, domain.ErrMissingField)

	forged := sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{
		RegisteredClaims: registered(domain.SystemActorID, time.Now().Add(time.Minute)),
	})
	_, err = manager.Verify(forged)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)
	valid := registered("emp-1", time.Now().Add(time.Minute))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "expired beyond leeway",
			token: sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{RegisteredClaims: registered("emp-1", time.Now().Add(-time.Hour))}),
			want:  domain.ErrExpiredToken,
		},
		{
			name:  "other secret",
			token: sign(t, jwt.SigningMethodHS256, []byte("other"), auth.Claims{RegisteredClaims: valid}),
			want:  domain.ErrInvalidToken,
		},
		{
			name:  "other algorithm",
			token: sign(t, jwt.SigningMethodHS512, []byte("secret"), auth.Claims{RegisteredClaims: valid}),
			want:  domain.ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
				Issuer: "someone-else", Subject: "emp-1", ExpiresAt: valid.ExpiresAt,
			}}),
			want: domain.ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
				Issuer: auth.Issuer, Subject: "emp-1",
			}}),
			want: domain.ErrInvalidToken,
		},
		{
			name:  "malformed",
			token: "not-a-token",
			want:  domain.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTManagerToleratesClockSkew(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)
	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{
		RegisteredClaims: registered("emp-1", time.Now().Add(-10*time.Second)),
	})

	_, err := manager.Verify(token)
	assert.NoError(t, err)
}
