package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://www.linkedin.com/oauth/v2/authorization"
	DefaultTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
)

// DefaultScopes grants OpenID identity and member posting.
var DefaultScopes = []string{"openid", "profile", "w_member_social"}

// OAuthConfig represents the application registration at the provider
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// OAuthClient wraps the authorization-code endpoints of the provider.
type OAuthClient struct {
	config      oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	now         func() time.Time
}

var _ repository.IOAuthProvider = (*OAuthClient)(nil)

func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &OAuthClient{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  hc,
		now:         time.Now,
	}
}

func (c *OAuthClient) withRedirect(redirectURI string) *oauth2.Config {
	cfg := c.config
	cfg.RedirectURL = redirectURI
	return &cfg
}

// AuthCodeURL builds the consent URL carrying client id, redirect URI, scopes and state.
func (c *OAuthClient) AuthCodeURL(state, redirectURI string) string {
	return c.withRedirect(redirectURI).AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token. The expiry is
// anchored on the moment the request was sent.
func (c *OAuthClient) Exchange(ctx context.Context, code, redirectURI string) (*model.TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	issuedAt := c.now()

	tok, err := c.withRedirect(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, mapExchangeError(err)
	}

	grant := &model.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IssuedAt:     issuedAt,
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		grant.ExpiresIn = time.Duration(v) * time.Second
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil {
			grant.ExpiresIn = d
		}
	}
	if grant.ExpiresIn <= 0 && !tok.Expiry.IsZero() {
		grant.ExpiresIn = tok.Expiry.Sub(issuedAt).Round(time.Second)
	}
	if s, ok := tok.Extra("scope").(string); ok {
		grant.Scope = s
	}
	return grant, nil
}

func mapExchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &model.TokenExchangeError{StatusCode: status, Code: re.ErrorCode, Description: re.ErrorDescription}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %v", model.ErrTokenTransport, ue)
	}
	return fmt.Errorf("%w: %v", model.ErrMalformedTokenResponse, err)
}

// FetchIdentity reads the OpenID userinfo of the freshly issued token.
func (c *OAuthClient) FetchIdentity(ctx context.Context, accessToken string) (*model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookup, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookup, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookup, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookup, NewAPIError(http.MethodGet, req.URL.Path, resp.StatusCode, body, false))
	}
	id, err := decodeUserInfo(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookup, err)
	}
	return id, nil
}
