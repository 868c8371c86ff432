package endpoints

import "github.com/jrsteele09/go-konan-sdk/konan"

const (
	RouteLogin        = "/api/auth/login/"
	RouteAPIKeyLogin  = "/api/auth/api-key/login/"
	RouteRefreshToken = "/api/auth/token/refresh/"
)

// Login exchanges an email and password for a token pair.
type Login struct{}

var _ Codec[konan.Credentials, konan.Tokens] = Login{}

func (Login) Descriptor() Descriptor {
	return Descriptor{Name: "login", Path: RouteLogin, Operation: POST}
}

func (Login) PrepareRequest(c konan.Credentials) (*Request, error) {
	return &Request{JSON: map[string]any{
		"email":    c.Email,
		"password": c.Password,
	}}, nil
}

func (Login) ProcessResponse(r *Response) (konan.Tokens, error) {
	return decodeTokens(r)
}

// APIKeyLogin exchanges an API key for a token pair.
type APIKeyLogin struct{}

var _ Codec[string, konan.Tokens] = APIKeyLogin{}

func (APIKeyLogin) Descriptor() Descriptor {
	return Descriptor{Name: "api-key-login", Path: RouteAPIKeyLogin, Operation: POST}
}

func (APIKeyLogin) PrepareRequest(apiKey string) (*Request, error) {
	return &Request{JSON: map[string]any{"api_key": apiKey}}, nil
}

func (APIKeyLogin) ProcessResponse(r *Response) (konan.Tokens, error) {
	return decodeTokens(r)
}

func decodeTokens(r *Response) (konan.Tokens, error) {
	access, err := lookupString(r.JSON, "access")
	if err != nil {
		return konan.Tokens{}, err
	}
	refresh, err := lookupString(r.JSON, "refresh")
	if err != nil {
		return konan.Tokens{}, err
	}
	return konan.Tokens{Access: access, Refresh: refresh}, nil
}

// RefreshToken trades a refresh token for a new access token.
type RefreshToken struct{}

var _ Codec[string, string] = RefreshToken{}

func (RefreshToken) Descriptor() Descriptor {
	return Descriptor{Name: "refresh-token", Path: RouteRefreshToken, Operation: POST}
}

func (RefreshToken) PrepareRequest(refresh string) (*Request, error) {
	return &Request{JSON: map[string]any{"refresh": refresh}}, nil
}

func (RefreshToken) ProcessResponse(r *Response) (string, error) {
	return lookupString(r.JSON, "access")
}
