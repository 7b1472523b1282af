package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretNotSet = errors.New("JWT secret not set")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const DefaultTokenTTL = 24 * time.Hour

var (
	mu        sync.RWMutex
	jwtSecret []byte
	tokenTTL  = DefaultTokenTTL
)

// SetSecret sets the HMAC key used to sign and verify tokens.
func SetSecret(secret string) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
}

// SetTokenTTL sets how long newly issued tokens stay valid. Non-positive
// values restore the default.
func SetTokenTTL(ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tokenTTL = ttl
}

func settings() ([]byte, time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	return jwtSecret, tokenTTL
}

// Claims represents the JWT payload
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given tenant
func GenerateToken(tenantID string) (string, error) {
	secret, ttl := settings()
	if len(secret) == 0 {
		return "", ErrSecretNotSet
	}

	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a JWT string. Only HS256 is accepted.
func ValidateToken(tokenStr string) (*Claims, error) {
	secret, _ := settings()
	if len(secret) == 0 {
		return nil, ErrSecretNotSet
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
