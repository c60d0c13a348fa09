package repository

import (
	"context"
	"errors"

	"linkedin-publisher/domain/model"
)

// ErrCredentialNotFound is returned when no credential record exists yet.
var ErrCredentialNotFound = errors.New("credential record not found")

// ICredential persists the single credential record.
type ICredential interface {
	// Load reads the record fresh from disk; it is never cached.
	Load(ctx context.Context) (*model.Credential, error)
	// Save replaces the record atomically and in full.
	Save(ctx context.Context, cred *model.Credential) error
	Path() string
}

// IPublishHistory stores published posts (optional).
type IPublishHistory interface {
	Record(ctx context.Context, rec *model.PublishRecord) error
	ListRecent(ctx context.Context, limit int) ([]*model.PublishRecord, error)
}
