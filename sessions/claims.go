package sessions

import (
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	ErrEmptyToken    = errors.New("empty token")
	ErrMissingExpiry = errors.New("token missing exp claim")
	ErrInvalidClaims = errors.New("error extracting claims")
)

type tokenClaims struct {
	expiry         time.Time
	email          string
	firstName      string
	lastName       string
	organizationID string
}

// decodeClaims reads the payload of a JWT without checking its signature.
// Konan tokens are signed by the auth server and the client holds no key.
func decodeClaims(rawToken string) (*tokenClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrEmptyToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrap(err, "invalid exp claim")
	}
	if exp == nil {
		return nil, ErrMissingExpiry
	}

	email, _ := claims["email"].(string)
	firstName, _ := claims["first_name"].(string)
	lastName, _ := claims["last_name"].(string)

	return &tokenClaims{
		expiry:         exp.Time.UTC(),
		email:          email,
		firstName:      firstName,
		lastName:       lastName,
		organizationID: stringClaim(claims["organization_id"]),
	}, nil
}

// organization ids are issued as either strings or integers
func stringClaim(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
