// Package auth keeps a Konan session logged in and its tokens fresh.
package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-konan-sdk/endpoints"
	"github.com/jrsteele09/go-konan-sdk/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Auth owns the session of one user. It is not safe for concurrent use.
type Auth struct {
	authURL     string
	credentials Credentials
	session     *sessions.Session
	client      endpoints.Doer
	logger      zerolog.Logger
}

var _ endpoints.Refresher = (*Auth)(nil)

// AuthOption defines a function type to modify the Auth instance.
type AuthOption func(*Auth)

// WithHTTPClient sets the client used for the auth endpoints.
func WithHTTPClient(client endpoints.Doer) AuthOption {
	return func(a *Auth) {
		a.client = client
	}
}

func WithLogger(logger zerolog.Logger) AuthOption {
	return func(a *Auth) {
		a.logger = logger
	}
}

// New creates a logged out Auth for the given credentials.
func New(authURL string, credentials Credentials, options ...AuthOption) (*Auth, error) {
	if strings.TrimSpace(authURL) == "" {
		return nil, errors.Wrap(ErrMissingAuthURL, "[auth.New]")
	}
	if credentials == nil {
		return nil, errors.Wrap(ErrMissingCredentials, "[auth.New]")
	}

	a := &Auth{
		authURL:     authURL,
		credentials: credentials,
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Session returns the current session, nil before the first login.
func (a *Auth) Session() *sessions.Session {
	return a.session
}

// EnsureLoggedIn fails with ErrNotLoggedIn until Login has succeeded.
func (a *Auth) EnsureLoggedIn() error {
	if a.session == nil {
		return ErrNotLoggedIn
	}
	return nil
}

// Login always obtains a brand new token pair and replaces the session.
func (a *Auth) Login(ctx context.Context) error {
	tokens, err := a.credentials.Login(ctx, a.authURL, a.endpointOptions()...)
	if err != nil {
		return errors.Wrap(err, "[Auth.Login] login failed")
	}

	session, err := sessions.New(tokens.Access, tokens.Refresh)
	if err != nil {
		return errors.Wrap(err, "[Auth.Login] invalid tokens")
	}
	a.session = session

	a.logger.Info().Str("user", session.String()).Msg("successfully logged in to konan")
	return nil
}

// RefreshToken swaps the refresh token for a new access token. The refresh
// token itself is kept.
func (a *Auth) RefreshToken(ctx context.Context) error {
	if err := a.EnsureLoggedIn(); err != nil {
		return errors.Wrap(err, "[Auth.RefreshToken]")
	}

	e, err := endpoints.New(endpoints.RefreshToken{}, a.authURL, a.endpointOptions()...)
	if err != nil {
		return errors.Wrap(err, "[Auth.RefreshToken]")
	}
	access, err := e.Request(ctx, a.session.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "[Auth.RefreshToken] refresh failed")
	}
	if err := a.session.SetAccessToken(access); err != nil {
		return errors.Wrap(err, "[Auth.RefreshToken] invalid access token")
	}
	return nil
}

// AutoRefresh makes sure the access token is valid before a request: nothing
// happens while it is, it is refreshed while the refresh token is valid, and
// otherwise the user is logged in again.
func (a *Auth) AutoRefresh(ctx context.Context) error {
	if err := a.EnsureLoggedIn(); err != nil {
		return errors.Wrap(err, "[Auth.AutoRefresh]")
	}

	if a.session.IsAccessValid() {
		return nil
	}

	if a.session.IsRefreshValid() {
		a.logger.Debug().Msg("access token expired, refreshing")
		return a.RefreshToken(ctx)
	}

	a.logger.Debug().Msg("refresh token expired, logging in again")
	return a.Login(ctx)
}

func (a *Auth) endpointOptions() []endpoints.EndpointOption {
	opts := []endpoints.EndpointOption{endpoints.WithLogger(a.logger)}
	if a.client != nil {
		opts = append(opts, endpoints.WithHTTPClient(a.client))
	}
	return opts
}
