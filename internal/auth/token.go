package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rookgm/streetmart/internal/models"
)

const defaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// claims is JWT claims carrying actor identity
type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Token issues and verifies HS256 tokens
type Token struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewAuthToken creates new Token instance
func NewAuthToken(key []byte, ttl time.Duration) *Token {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Token{key: key, ttl: ttl, now: time.Now}
}

// CreateToken creates signed token for principal
func (t *Token) CreateToken(p models.Principal) (string, error) {
	now := t.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ActorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: string(p.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken verifies token and returns principal
func (t *Token) VerifyToken(tokenString string) (*models.Principal, error) {
	c := claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	role := models.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &models.Principal{ActorID: c.Subject, Role: role}, nil
}
