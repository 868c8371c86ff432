package auth

import "errors"

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrMissingCredentials = errors.New("credentials are required")
	ErrMissingAuthURL     = errors.New("auth url is required")
)
