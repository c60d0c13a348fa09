package usecase_test

import (
	"context"
	"io"

	"linkedin-publisher/domain/dto"
	"linkedin-publisher/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) AuthCodeURL(state, redirectURI string) string {
	args := m.Called(state, redirectURI)
	return args.String(0)
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, code, redirectURI string) (*model.TokenGrant, error) {
	args := m.Called(ctx, code, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenGrant), args.Error(1)
}

func (m *MockOAuthProvider) FetchIdentity(ctx context.Context, accessToken string) (*model.Identity, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

// fakeListener hands out a canned callback, or blocks until the context ends.
type fakeListener struct {
	port     int
	startErr error
	result   *model.CallbackResult
	closed   int
}

func (f *fakeListener) Start(ctx context.Context) (int, error) {
	if f.startErr != nil {
		return 0, f.startErr
	}
	return f.port, nil
}

func (f *fakeListener) Wait(ctx context.Context) (*model.CallbackResult, error) {
	if f.result == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, nil
}

func (f *fakeListener) Close() error {
	f.closed++
	return nil
}

type MockCredential struct {
	mock.Mock
}

func (m *MockCredential) Load(ctx context.Context) (*model.Credential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *MockCredential) Save(ctx context.Context, cred *model.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredential) Path() string {
	return "/tmp/linkedin.local.md"
}

type MockBrowser struct {
	mock.Mock
}

func (m *MockBrowser) Open(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

type MockLinkedIn struct {
	mock.Mock
}

func (m *MockLinkedIn) InitializeUpload(ctx context.Context, ownerURN string) (*model.MediaAsset, error) {
	args := m.Called(ctx, ownerURN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaAsset), args.Error(1)
}

func (m *MockLinkedIn) UploadBinary(ctx context.Context, asset *model.MediaAsset, body io.Reader, size int64) error {
	args := m.Called(ctx, asset, body, size)
	return args.Error(0)
}

func (m *MockLinkedIn) CreatePost(ctx context.Context, payload dto.PostPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockLinkedIn) GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error) {
	args := m.Called(ctx, postURN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockLinkedIn) ListComments(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error) {
	args := m.Called(ctx, postURN, start, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentPage), args.Error(1)
}

func (m *MockLinkedIn) CreateComment(ctx context.Context, postURN, actorURN, text string) (*model.CommentRef, error) {
	args := m.Called(ctx, postURN, actorURN, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentRef), args.Error(1)
}

func (m *MockLinkedIn) ReplyComment(ctx context.Context, postURN, parentCommentURN, actorURN, text string) (*model.CommentRef, error) {
	args := m.Called(ctx, postURN, parentCommentURN, actorURN, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentRef), args.Error(1)
}

func (m *MockLinkedIn) GetUserInfo(ctx context.Context) (*model.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

type MockPublishHistory struct {
	mock.Mock
}

func (m *MockPublishHistory) Record(ctx context.Context, rec *model.PublishRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPublishHistory) ListRecent(ctx context.Context, limit int) ([]*model.PublishRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PublishRecord), args.Error(1)
}
