package usecase

import (
	"context"
	"errors"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/logger"
)

type IStatusUsecase interface {
	Check(ctx context.Context, verify bool) (*model.AuthStatus, error)
}

type statusUsecase struct {
	credentials repository.ICredential
	clients     repository.ILinkedInFactory
	now         func() time.Time
}

func NewStatusUsecase(credentials repository.ICredential, clients repository.ILinkedInFactory) IStatusUsecase {
	return &statusUsecase{credentials: credentials, clients: clients, now: time.Now}
}

// Check classifies the stored credential as absent, expired or valid. With
// verify set, a valid token is also checked against the userinfo endpoint.
func (u *statusUsecase) Check(ctx context.Context, verify bool) (*model.AuthStatus, error) {
	cred, err := u.credentials.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return &model.AuthStatus{State: model.AuthStateAbsent}, nil
		}
		logger.GetLogger().WithField("error", err).Warn("stored credential unusable")
		return &model.AuthStatus{State: model.AuthStateAbsent, IdentityError: err.Error()}, nil
	}
	return u.evaluate(ctx, cred, verify), nil
}

func (u *statusUsecase) evaluate(ctx context.Context, cred *model.Credential, verify bool) *model.AuthStatus {
	now := u.now()
	st := &model.AuthStatus{
		PersonURN:     cred.PersonURN,
		DisplayName:   cred.DisplayName,
		DaysRemaining: cred.DaysRemaining(now),
	}
	if !cred.ExpiresAt.IsZero() {
		exp := cred.ExpiresAt
		st.ExpiresAt = &exp
	}
	if cred.IsExpired(now) {
		st.State = model.AuthStateExpired
		st.DaysRemaining = 0
		return st
	}
	st.State = model.AuthStateValid

	if verify && u.clients != nil {
		ok := true
		id, err := u.clients(cred.AccessToken).GetUserInfo(ctx)
		switch {
		case err != nil:
			ok = false
			st.IdentityError = err.Error()
		case id.PersonURN() != cred.PersonURN:
			ok = false
			st.IdentityError = "token belongs to " + id.PersonURN()
		}
		st.IdentityVerified = &ok
	}
	return st
}
