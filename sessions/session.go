// Package sessions holds the authenticated state of a Konan user.
package sessions

import (
	"time"

	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Session stores the token pair of a logged in user together with the expiry
// times and identity claims decoded from them. Expiries are only ever set from
// the token payloads.
type Session struct {
	AccessToken    string
	RefreshToken   string
	AccessExpiry   time.Time
	RefreshExpiry  time.Time
	Email          string
	FirstName      string
	LastName       string
	OrganizationID string
}

// New builds a Session from a freshly issued token pair.
func New(accessToken, refreshToken string) (*Session, error) {
	s := &Session{}
	if err := s.SetAccessToken(accessToken); err != nil {
		return nil, errors.Wrap(err, "[sessions.New] access token")
	}
	if err := s.SetRefreshToken(refreshToken); err != nil {
		return nil, errors.Wrap(err, "[sessions.New] refresh token")
	}
	return s, nil
}

// SetAccessToken replaces the access token, its expiry and the identity claims.
func (s *Session) SetAccessToken(token string) error {
	c, err := decodeClaims(token)
	if err != nil {
		return err
	}
	s.AccessToken = token
	s.AccessExpiry = c.expiry
	s.Email = c.email
	s.FirstName = c.firstName
	s.LastName = c.lastName
	s.OrganizationID = c.organizationID
	return nil
}

// SetRefreshToken replaces the refresh token and its expiry.
func (s *Session) SetRefreshToken(token string) error {
	c, err := decodeClaims(token)
	if err != nil {
		return err
	}
	s.RefreshToken = token
	s.RefreshExpiry = c.expiry
	return nil
}

// IsAccessValid reports whether the access token has not yet expired.
func (s *Session) IsAccessValid() bool {
	return isValid(s.AccessExpiry)
}

// IsRefreshValid reports whether the refresh token has not yet expired.
func (s *Session) IsRefreshValid() bool {
	return isValid(s.RefreshExpiry)
}

func (s *Session) String() string {
	return s.Email
}

// exp is compared in whole UTC seconds, no skew
func isValid(expiry time.Time) bool {
	return expiry.Unix() > NowTimeFunc().UTC().Unix()
}
