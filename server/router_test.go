package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linkedin-publisher/domain/dto"
	"linkedin-publisher/domain/model"
	"linkedin-publisher/infrastructure/clients/linkedin"
	"linkedin-publisher/infrastructure/utils"
	httpHandler "linkedin-publisher/interfaces/http"
	"linkedin-publisher/server"
	"linkedin-publisher/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "bridge-secret"

type MockStatusUsecase struct{ mock.Mock }

func (m *MockStatusUsecase) Check(ctx context.Context, verify bool) (*model.AuthStatus, error) {
	args := m.Called(ctx, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthStatus), args.Error(1)
}

type MockPublishUsecase struct{ mock.Mock }

func (m *MockPublishUsecase) Publish(ctx context.Context, req model.PostRequest) (*model.PublishResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishResult), args.Error(1)
}

func (m *MockPublishUsecase) UploadImage(ctx context.Context, path string) (*model.MediaAsset, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaAsset), args.Error(1)
}

func (m *MockPublishUsecase) Verify(ctx context.Context, postURN, sentText string) model.VerificationResult {
	args := m.Called(ctx, postURN, sentText)
	return args.Get(0).(model.VerificationResult)
}

func (m *MockPublishUsecase) GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error) {
	args := m.Called(ctx, postURN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockPublishUsecase) History(ctx context.Context, limit int) ([]*model.PublishRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PublishRecord), args.Error(1)
}

type MockCommentUsecase struct{ mock.Mock }

func (m *MockCommentUsecase) List(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error) {
	args := m.Called(ctx, postURN, start, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentPage), args.Error(1)
}

func (m *MockCommentUsecase) Create(ctx context.Context, postURN, text string) (*model.CommentRef, error) {
	args := m.Called(ctx, postURN, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentRef), args.Error(1)
}

func (m *MockCommentUsecase) Reply(ctx context.Context, postURN, parentCommentURN, text string) (*model.CommentRef, error) {
	args := m.Called(ctx, postURN, parentCommentURN, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentRef), args.Error(1)
}

type routerFixture struct {
	status   *MockStatusUsecase
	publish  *MockPublishUsecase
	comments *MockCommentUsecase
	engine   *gin.Engine
	token    string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		status:   new(MockStatusUsecase),
		publish:  new(MockPublishUsecase),
		comments: new(MockCommentUsecase),
	}
	f.engine = server.InitiateRouter(
		httpHandler.NewHealthHandler(false),
		httpHandler.NewLinkedInHandler(f.status, f.publish, f.comments),
		secret,
		nil,
	)
	tok, err := utils.GenerateToken("test", time.Hour, secret)
	require.NoError(t, err)
	f.token = tok
	return f
}

func (f *routerFixture) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthzIsPublic(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouter_APIRequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/status", "", false).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "That's not even a token")
}

func TestRouter_ExpiredTokenRejected(t *testing.T) {
	f := newRouterFixture(t)
	expired, err := utils.GenerateToken("test", -time.Minute, secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Timing is everything")
}

func TestRouter_Status(t *testing.T) {
	f := newRouterFixture(t)
	f.status.On("Check", mock.Anything, true).Return(&model.AuthStatus{State: model.AuthStateValid, DaysRemaining: 10}, nil)

	w := f.do(http.MethodGet, "/api/status?verify=true", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "authenticated, 10 days remaining", body["summary"])
}

func TestRouter_CreatePost(t *testing.T) {
	f := newRouterFixture(t)
	f.publish.On("Publish", mock.Anything, mock.MatchedBy(func(r model.PostRequest) bool {
		return r.Variant == model.PostVariantText && r.Text == "hello" && r.Visibility == "PUBLIC"
	})).Return(&model.PublishResult{Variant: model.PostVariantText, PostURN: "urn:li:share:1"}, nil)

	w := f.do(http.MethodPost, "/api/posts", `{"variant":"text","text":"hello","visibility":"PUBLIC"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "urn:li:share:1")
}

func TestRouter_CreatePostValidationError(t *testing.T) {
	f := newRouterFixture(t)
	f.publish.On("Publish", mock.Anything, mock.Anything).Return(nil, model.ErrImageCount)

	w := f.do(http.MethodPost, "/api/posts", `{"variant":"multi_image","text":"x","images":[{"path":"a.png"}]}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ListCommentsForbidden(t *testing.T) {
	f := newRouterFixture(t)
	f.comments.On("List", mock.Anything, "urn:li:share:1", 0, 20).Return(nil, usecase.ErrElevatedAccessRequired)

	w := f.do(http.MethodGet, "/api/posts/urn:li:share:1/comments", "", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "feature requires elevated access")
}

func TestRouter_ListCommentsServerError(t *testing.T) {
	f := newRouterFixture(t)
	f.comments.On("List", mock.Anything, "urn:li:share:1", 5, 10).Return(nil, linkedin.ErrServer)

	w := f.do(http.MethodGet, "/api/posts/urn:li:share:1/comments?start=5&count=10", "", true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRouter_ReplyComment(t *testing.T) {
	f := newRouterFixture(t)
	parent := "urn:li:comment:(urn:li:activity:1,2)"
	f.comments.On("Reply", mock.Anything, "urn:li:share:1", parent, "thanks").Return(&model.CommentRef{ID: "3"}, nil)

	w := f.do(http.MethodPost, "/api/comments/reply", `{"post_urn":"urn:li:share:1","comment_urn":"`+parent+`","text":"thanks"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	f.comments.AssertExpectations(t)
}

func TestRouter_HistoryDisabled(t *testing.T) {
	f := newRouterFixture(t)
	f.publish.On("History", mock.Anything, 20).Return(nil, usecase.ErrHistoryDisabled)

	w := f.do(http.MethodGet, "/api/history", "", true)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
