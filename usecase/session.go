package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
)

// session loads the credential fresh and binds a client to its token.
func session(ctx context.Context, creds repository.ICredential, clients repository.ILinkedInFactory, now time.Time) (*model.Credential, repository.ILinkedIn, error) {
	cred, err := creds.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, nil, ErrNotAuthenticated
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if cred.IsExpired(now) {
		return nil, nil, ErrCredentialExpired
	}
	return cred, clients(cred.AccessToken), nil
}
