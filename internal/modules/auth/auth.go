package auth

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned for any login failure; which part of the
// credentials was wrong is deliberately not disclosed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service issues admin access tokens. The order listing exposes buyer names
// and shipping addresses, so it sits behind this guard when configured.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}
