package usecase

import "errors"

var (
	ErrNotAuthenticated       = errors.New("not authenticated, run setup")
	ErrCredentialExpired      = errors.New("access token expired, re-authorization required")
	ErrElevatedAccessRequired = errors.New("feature requires elevated access")
	ErrImageNotFound          = errors.New("image file not found")
	ErrEmptyComment           = errors.New("comment text is required")
	ErrMissingURN             = errors.New("urn is required")
)
