package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkedin-publisher/domain/dto"
	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIBaseURL  = "https://api.linkedin.com/rest"
	DefaultUserInfoURL = "https://api.linkedin.com/v2/userinfo"
	DefaultAPIVersion  = "202601"

	restliProtocolVersion = "2.0.0"
	restliIDHeader        = "x-restli-id"
)

// Config represents the REST client configuration
type Config struct {
	BaseURL     string
	UserInfoURL string
	APIVersion  string
	Timeout     time.Duration
	// HTTPClient is the base transport; the bearer token is layered on top.
	HTTPClient *http.Client
}

// Client represents a LinkedIn REST client bound to one access token
type Client struct {
	http        *http.Client
	baseURL     string
	userInfoURL string
	apiVersion  string
}

var _ repository.ILinkedIn = (*Client)(nil)

// NewClient creates a client that sends the access token as a bearer header on every call.
func NewClient(cfg Config, accessToken string) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	hc.Timeout = cfg.Timeout

	c := &Client{
		http:        hc,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userInfoURL: cfg.UserInfoURL,
		apiVersion:  cfg.APIVersion,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultAPIBaseURL
	}
	if c.userInfoURL == "" {
		c.userInfoURL = DefaultUserInfoURL
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	return c
}

// NewFactory returns a constructor usable wherever a token is only known at call time.
func NewFactory(cfg Config) repository.ILinkedInFactory {
	return func(accessToken string) repository.ILinkedIn {
		return NewClient(cfg, accessToken)
	}
}

// escapeURN percent-encodes every reserved character, colons and parentheses included.
func escapeURN(urn string) string {
	return strings.ReplaceAll(url.QueryEscape(urn), "+", "%20")
}

type request struct {
	method    string
	url       string
	body      io.Reader
	size      int64
	json      bool
	versioned bool
	gated     bool
	header    map[string]string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", r.method, r.url, err)
	}
	if r.size > 0 {
		req.ContentLength = r.size
	}
	if r.json {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.versioned {
		req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
		req.Header.Set("Linkedin-Version", c.apiVersion)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, r.method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrTransport, r.method, req.URL.Path, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"method":   r.method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("linkedin request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(r.method, req.URL.Path, resp.StatusCode, body, r.gated)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in interface{}, gated bool) (*response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, request{
		method:    method,
		url:       c.baseURL + endpoint,
		body:      body,
		json:      in != nil,
		versioned: true,
		gated:     gated,
	})
}

// InitializeUpload registers an image upload and returns the asset URN and its upload URL.
func (c *Client) InitializeUpload(ctx context.Context, ownerURN string) (*model.MediaAsset, error) {
	in := dto.InitializeUploadRequest{InitializeUploadRequest: dto.InitializeUploadOwner{Owner: ownerURN}}
	resp, err := c.doJSON(ctx, http.MethodPost, "/images?action=initializeUpload", in, false)
	if err != nil {
		return nil, err
	}

	var out dto.InitializeUploadResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("%w: initializeUpload: %v", ErrMalformedBody, err)
	}
	asset := &model.MediaAsset{UploadURL: out.UploadURL, URN: out.Image}
	if out.Value != nil {
		asset.UploadURL = out.Value.UploadURL
		asset.URN = out.Value.Image
	}
	if asset.UploadURL == "" || asset.URN == "" {
		return nil, fmt.Errorf("%w: initializeUpload: missing uploadUrl or image", ErrMalformedBody)
	}
	return asset, nil
}

// UploadBinary PUTs the raw image bytes to the upload URL of an initialized asset.
func (c *Client) UploadBinary(ctx context.Context, asset *model.MediaAsset, body io.Reader, size int64) error {
	if asset == nil || asset.UploadURL == "" {
		return errors.New("upload: asset has no upload url")
	}
	_, err := c.do(ctx, request{
		method: http.MethodPut,
		url:    asset.UploadURL,
		body:   body,
		size:   size,
		header: map[string]string{"Content-Type": "application/octet-stream"},
	})
	return err
}

// CreatePost publishes a post; the new URN comes back in the x-restli-id header.
// An empty URN with a nil error means the post was accepted but not identified.
func (c *Client) CreatePost(ctx context.Context, payload dto.PostPayload) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/posts", payload, false)
	if err != nil {
		return "", err
	}
	return resp.header.Get(restliIDHeader), nil
}

// GetPost reads a post back. A 403 here maps to ErrPermissionGated.
func (c *Client) GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/posts/"+escapeURN(postURN), nil, true)
	if err != nil {
		return nil, err
	}
	var out dto.PostResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("%w: get post: %v", ErrMalformedBody, err)
	}
	return &out, nil
}

// ListComments returns one page of comments on a post.
func (c *Client) ListComments(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error) {
	v, err := query.Values(dto.CommentListQuery{Start: start, Count: count})
	if err != nil {
		return nil, fmt.Errorf("encoding comment query: %w", err)
	}
	endpoint := "/socialActions/" + escapeURN(postURN) + "/comments?" + v.Encode()
	resp, err := c.doJSON(ctx, http.MethodGet, endpoint, nil, true)
	if err != nil {
		return nil, err
	}

	var out dto.CommentListResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", ErrMalformedBody, err)
	}
	page := &model.CommentPage{PostURN: postURN, Start: start, Count: count, Comments: make([]model.Comment, 0, len(out.Elements))}
	for _, e := range out.Elements {
		cm := model.Comment{
			URN:   e.CommentURN,
			ID:    e.ID,
			Actor: e.Actor,
			Text:  e.Message.Text,
		}
		if e.LikesSummary != nil {
			cm.Likes = e.LikesSummary.TotalLikes
		}
		if e.Created != nil && e.Created.Time > 0 {
			cm.CreatedAt = time.UnixMilli(e.Created.Time).UTC()
		}
		page.Comments = append(page.Comments, cm)
	}
	return page, nil
}

// CreateComment adds a top-level comment to a post.
func (c *Client) CreateComment(ctx context.Context, postURN, actorURN, text string) (*model.CommentRef, error) {
	in := dto.CreateCommentRequest{Actor: actorURN, Object: postURN, Message: dto.CommentText{Text: text}}
	return c.postComment(ctx, postURN, in)
}

// ReplyComment answers an existing comment. The parent's composite URN is the target resource.
func (c *Client) ReplyComment(ctx context.Context, postURN, parentCommentURN, actorURN, text string) (*model.CommentRef, error) {
	in := dto.CreateCommentRequest{
		Actor:         actorURN,
		Object:        postURN,
		Message:       dto.CommentText{Text: text},
		ParentComment: parentCommentURN,
	}
	return c.postComment(ctx, parentCommentURN, in)
}

func (c *Client) postComment(ctx context.Context, targetURN string, in dto.CreateCommentRequest) (*model.CommentRef, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/socialActions/"+escapeURN(targetURN)+"/comments", in, false)
	if err != nil {
		return nil, err
	}
	ref := &model.CommentRef{ID: resp.header.Get(restliIDHeader)}
	if len(bytes.TrimSpace(resp.body)) > 0 {
		var out dto.CreateCommentResponse
		if err := json.Unmarshal(resp.body, &out); err == nil {
			if ref.ID == "" {
				ref.ID = out.ID
			}
			ref.URN = out.CommentURN
		}
	}
	return ref, nil
}

// GetUserInfo re-fetches the OpenID identity of the token owner.
func (c *Client) GetUserInfo(ctx context.Context) (*model.Identity, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.userInfoURL})
	if err != nil {
		return nil, err
	}
	return decodeUserInfo(resp.body)
}

func decodeUserInfo(body []byte) (*model.Identity, error) {
	var out dto.UserInfoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: userinfo: %v", ErrMalformedBody, err)
	}
	if out.Sub == "" {
		return nil, fmt.Errorf("%w: userinfo: missing sub", ErrMalformedBody)
	}
	return &model.Identity{Subject: out.Sub, Name: out.Name}, nil
}
