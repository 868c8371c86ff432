package auth

import (
	"context"

	"github.com/jrsteele09/go-konan-sdk/endpoints"
	"github.com/jrsteele09/go-konan-sdk/konan"
)

// Credentials obtain a fresh token pair from the auth server.
type Credentials interface {
	Login(ctx context.Context, authURL string, opts ...endpoints.EndpointOption) (konan.Tokens, error)
	String() string
}

// PasswordCredentials log in with an email and password.
type PasswordCredentials struct {
	Email    string
	Password string
}

var _ Credentials = PasswordCredentials{}

func (c PasswordCredentials) Login(ctx context.Context, authURL string, opts ...endpoints.EndpointOption) (konan.Tokens, error) {
	e, err := endpoints.New(endpoints.Login{}, authURL, opts...)
	if err != nil {
		return konan.Tokens{}, err
	}
	return e.Request(ctx, konan.Credentials{Email: c.Email, Password: c.Password})
}

func (c PasswordCredentials) String() string {
	return c.Email
}

// APIKeyCredentials log in with a platform issued API key.
type APIKeyCredentials struct {
	Key string
}

var _ Credentials = APIKeyCredentials{}

func (c APIKeyCredentials) Login(ctx context.Context, authURL string, opts ...endpoints.EndpointOption) (konan.Tokens, error) {
	e, err := endpoints.New(endpoints.APIKeyLogin{}, authURL, opts...)
	if err != nil {
		return konan.Tokens{}, err
	}
	return e.Request(ctx, c.Key)
}

func (c APIKeyCredentials) String() string {
	return "api-key"
}
