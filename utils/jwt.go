package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// devSecret is only used when no JWT_SECRET is configured outside production.
const devSecret = "estatepro-dev-secret"

var secretKey = []byte(devSecret)

// SetJWTSecret replaces the signing key. An empty secret keeps the
// development key.
func SetJWTSecret(secret string) {
	if secret == "" {
		secretKey = []byte(devSecret)
		return
	}
	secretKey = []byte(secret)
}

// GenerateToken creates a signed JWT token for subject, the user id the
// gateway knows the caller by. The token expires after duration.
func GenerateToken(subject string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
}

// ExtractIDFromToken extracts the subject from a valid JWT token string.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}

	return sub, nil
}
