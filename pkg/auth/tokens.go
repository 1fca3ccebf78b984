package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
)

// Claims carries the user's identity inside a signed token. The subject is
// the user ID; username and role ride along so requests need no user lookup.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	signKey []byte
	ttl     time.Duration
}

func NewTokenManager(signKey []byte, ttl time.Duration) (*TokenManager, error) {
	if len(signKey) == 0 {
		return nil, errors.New("token signing key is empty")
	}
	return &TokenManager{signKey: signKey, ttl: ttl}, nil
}

// Issue signs a token for u and returns it with its expiry time.
func (m *TokenManager) Issue(u *models.User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signKey)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signing access token")
	}
	return token, exp, nil
}

// Verify parses and validates tokenString and returns the session it encodes.
// Any parse or validation failure maps to errs.ErrUnauthorized; callers never
// learn why a token was rejected.
func (m *TokenManager) Verify(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errs.ErrUnauthorized
	}

	sub, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	role := models.Role(claims.Role)
	if !models.ValidRole(role) {
		return nil, errs.ErrUnauthorized
	}

	return &Session{
		Sub:      sub,
		Username: claims.Username,
		Role:     role,
	}, nil
}
