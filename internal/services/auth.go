package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

// TokenVerifier validates a bearer token and returns the subject (the author
// id) it was issued for.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

type jwtVerifier struct {
	log       *logger.Logger
	secretKey []byte
}

// NewJWTVerifier builds an HMAC verifier. The secret comes from the argument
// or, when empty, from JWT_SECRET_KEY.
func NewJWTVerifier(log *logger.Logger, secret string) (TokenVerifier, error) {
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET_KEY"))
	}
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}
	return &jwtVerifier{
		log:       log.With("service", "JWTVerifier"),
		secretKey: []byte(secret),
	}, nil
}

func (v *jwtVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
