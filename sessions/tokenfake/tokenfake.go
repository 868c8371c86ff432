// Package tokenfake mints Konan-shaped JWTs for tests and local fakes.
package tokenfake

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const signingSecret = "konan-fake-secret"

// Identity is the user information carried in an access token.
type Identity struct {
	Email          string
	FirstName      string
	LastName       string
	OrganizationID string
}

// AccessToken creates an access token expiring after ttl. A negative ttl gives
// an already expired token.
func AccessToken(identity Identity, ttl time.Duration) string {
	claims := jwtlib.MapClaims{
		"token_type":      "access",
		"email":           identity.Email,
		"first_name":      identity.FirstName,
		"last_name":       identity.LastName,
		"organization_id": identity.OrganizationID,
		"iat":             NowTimeFunc().Unix(),
		"exp":             NowTimeFunc().Add(ttl).Unix(),
		"jti":             uuid.New().String(),
	}
	return sign(claims)
}

// RefreshToken creates a refresh token expiring after ttl.
func RefreshToken(ttl time.Duration) string {
	claims := jwtlib.MapClaims{
		"token_type": "refresh",
		"iat":        NowTimeFunc().Unix(),
		"exp":        NowTimeFunc().Add(ttl).Unix(),
		"jti":        uuid.New().String(),
	}
	return sign(claims)
}

// WithClaims signs arbitrary claims.
func WithClaims(claims map[string]any) string {
	return sign(jwtlib.MapClaims(claims))
}

func sign(claims jwtlib.MapClaims) string {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signingSecret))
	if err != nil {
		panic(err)
	}
	return signed
}
