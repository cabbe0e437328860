package ports

import "context"

// TokenIdentity is what a validated bearer token says about its holder.
type TokenIdentity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*TokenIdentity, error)
}
