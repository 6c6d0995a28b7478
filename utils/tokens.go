package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries only the user id. Role and profile are resolved from
// the database by handlers that need them, so a token never goes stale
// on a role change.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func AccessSecret() string  { return os.Getenv("JWT_ACCESS_SECRET") }
func RefreshSecret() string { return os.Getenv("JWT_REFRESH_SECRET") }

func GenerateAccessToken(userID string) (string, error) {
	return signToken(userID, AccessSecret(), AccessTTL())
}

func GenerateRefreshToken(userID string) (string, error) {
	return signToken(userID, RefreshSecret(), RefreshTTL())
}

func signToken(userID, secret string, ttl time.Duration) (string, error) {
	// the jti makes every mint distinct; without it two tokens signed
	// for the same user in the same second are byte-identical and
	// rotation would hand back the token it was meant to retire
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken checks signature and expiry only; it never touches the
// database.
func ValidateToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func AccessTTL() time.Duration {
	minStr := os.Getenv("ACCESS_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 60
	}
	return time.Duration(min) * time.Minute
}

func RefreshTTL() time.Duration {
	dStr := os.Getenv("REFRESH_TOKEN_TTL_DAYS")
	days, _ := strconv.Atoi(dStr)
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
