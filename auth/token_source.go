package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

type tokenSource struct {
	ctx  context.Context
	auth *Auth
}

// TokenSource exposes the session as an oauth2.TokenSource. Every Token call
// runs AutoRefresh first.
func (a *Auth) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, auth: a}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	if err := ts.auth.AutoRefresh(ts.ctx); err != nil {
		return nil, err
	}
	s := ts.auth.Session()
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.AccessExpiry,
	}, nil
}

// HTTPClient returns a client that adds the bearer token to every request,
// for calling Konan routes that have no typed endpoint.
func (a *Auth) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, a.TokenSource(ctx))
}
