package repository

import (
	"context"

	"linkedin-publisher/domain/model"
)

// IOAuthProvider is the provider side of the authorization-code flow.
type IOAuthProvider interface {
	AuthCodeURL(state, redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (*model.TokenGrant, error)
	FetchIdentity(ctx context.Context, accessToken string) (*model.Identity, error)
}

// ICallbackListener receives the single OAuth redirect on the loopback interface.
type ICallbackListener interface {
	// Start binds the listener and returns the port actually bound.
	Start(ctx context.Context) (int, error)
	// Wait blocks until the first well-formed callback, ctx cancellation or the listener failing.
	Wait(ctx context.Context) (*model.CallbackResult, error)
	// Close releases the listener; safe to call more than once.
	Close() error
}

// IBrowser opens a URL for the user.
type IBrowser interface {
	Open(url string) error
}
