package usecase_test

import (
	"context"
	"testing"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/clients/linkedin"
	"linkedin-publisher/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func staticFactory(c repository.ILinkedIn) repository.ILinkedInFactory {
	return func(string) repository.ILinkedIn { return c }
}

func TestStatus_Absent(t *testing.T) {
	creds := new(MockCredential)
	creds.On("Load", mock.Anything).Return(nil, repository.ErrCredentialNotFound)

	st, err := usecase.NewStatusUsecase(creds, nil).Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, model.AuthStateAbsent, st.State)
	assert.Equal(t, "not authenticated, run setup", st.Summary())
}

func TestStatus_ValidTenDaysAhead(t *testing.T) {
	creds := new(MockCredential)
	creds.On("Load", mock.Anything).Return(&model.Credential{
		AccessToken: "AT", PersonURN: "urn:li:person:p", ExpiresAt: time.Now().Add(10 * 24 * time.Hour),
	}, nil)

	st, err := usecase.NewStatusUsecase(creds, nil).Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, model.AuthStateValid, st.State)
	assert.Equal(t, 10, st.DaysRemaining)
	assert.Equal(t, "authenticated, 10 days remaining", st.Summary())
	assert.Nil(t, st.IdentityVerified)
}

func TestStatus_ExpiredFiveDaysAgo(t *testing.T) {
	creds := new(MockCredential)
	creds.On("Load", mock.Anything).Return(&model.Credential{
		AccessToken: "AT", PersonURN: "urn:li:person:p", ExpiresAt: time.Now().Add(-5 * 24 * time.Hour),
	}, nil)

	st, err := usecase.NewStatusUsecase(creds, nil).Check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, model.AuthStateExpired, st.State)
	assert.Equal(t, "expired, re-authorization required", st.Summary())
}

func TestStatus_VerifyIdentity(t *testing.T) {
	cred := &model.Credential{AccessToken: "AT", PersonURN: "urn:li:person:p", ExpiresAt: time.Now().Add(48 * time.Hour)}

	t.Run("matching", func(t *testing.T) {
		creds := new(MockCredential)
		creds.On("Load", mock.Anything).Return(cred, nil)
		api := new(MockLinkedIn)
		api.On("GetUserInfo", mock.Anything).Return(&model.Identity{Subject: "p", Name: "Ada"}, nil)

		st, err := usecase.NewStatusUsecase(creds, staticFactory(api)).Check(context.Background(), true)
		require.NoError(t, err)
		require.NotNil(t, st.IdentityVerified)
		assert.True(t, *st.IdentityVerified)
	})

	t.Run("revoked", func(t *testing.T) {
		creds := new(MockCredential)
		creds.On("Load", mock.Anything).Return(cred, nil)
		api := new(MockLinkedIn)
		api.On("GetUserInfo", mock.Anything).Return(nil, linkedin.ErrTokenExpired)

		st, err := usecase.NewStatusUsecase(creds, staticFactory(api)).Check(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, model.AuthStateValid, st.State)
		require.NotNil(t, st.IdentityVerified)
		assert.False(t, *st.IdentityVerified)
		assert.NotEmpty(t, st.IdentityError)
	})
}
