package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/leaveledger/internal/domain"
)

// Issuer is stamped on every token and required on verification.
const Issuer = "leaveledger"

// clockSkew tolerated between the issuing and the verifying host.
const clockSkew = 30 * time.Second

// Claims carry the actor: the subject is the employee or approver id, org
// and roles decide visibility and which workflow steps they may act on.
type Claims struct {
	OrgID string   `json:"org_id"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.Subject, OrgID: c.OrgID, Roles: c.Roles}
}

// JWTManager signs and verifies HS256 actor tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate issues a token for actor. The system actor cannot be issued one.
func (m *JWTManager) Generate(actor domain.Actor) (string, error) {
	if actor.ID == "" {
		return "", fmt.Errorf("%w: actor id", domain.ErrMissingField)
	}
	if actor.IsSystem() {
		return "", domain.ErrActionNotPermitted
	}

	now := m.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OrgID: actor.OrgID,
		Roles: actor.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}).SignedString(m.secret)
}

// Verify returns the claims of a valid token. Expiry maps to
// domain.ErrExpiredToken, anything else to domain.ErrInvalidToken.
func (m *JWTManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil:
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" || claims.Subject == domain.SystemActorID {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
