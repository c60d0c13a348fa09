package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/logger"
)

const (
	DefaultCallbackTimeout = 120 * time.Second
	stateBytes             = 32
)

// OAuthProviderFactory binds the provider to one application registration.
type OAuthProviderFactory func(clientID, clientSecret string) repository.IOAuthProvider

// CallbackListenerFactory returns a fresh one-shot listener per authorization run.
type CallbackListenerFactory func() repository.ICallbackListener

type IAuthUsecase interface {
	Authorize(ctx context.Context, clientID, clientSecret string) (*model.Credential, error)
}

type AuthDeps struct {
	Provider    OAuthProviderFactory
	Listener    CallbackListenerFactory
	Credentials repository.ICredential
	Browser     repository.IBrowser
	Timeout     time.Duration
	Scopes      []string
	// OnAuthURL is called with the consent URL before the browser is launched.
	OnAuthURL func(authURL string)
}

type authUsecase struct {
	deps AuthDeps
	now  func() time.Time
}

func NewAuthUsecase(deps AuthDeps) IAuthUsecase {
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultCallbackTimeout
	}
	return &authUsecase{deps: deps, now: time.Now}
}

// Authorize runs the full authorization-code flow and persists the resulting
// credential. On any failure the previously stored record is left as it was.
func (u *authUsecase) Authorize(ctx context.Context, clientID, clientSecret string) (*model.Credential, error) {
	lg := logger.GetLogger()
	if clientID == "" || clientSecret == "" {
		return nil, model.ErrMissingClientCredentials
	}

	state, err := newState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener := u.deps.Listener()
	port, err := listener.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := listener.Close(); cerr != nil {
			lg.WithField("error", cerr).Warn("closing callback listener")
		}
	}()

	pending := model.PendingAuthorization{
		State:       state,
		Scopes:      u.deps.Scopes,
		RedirectURI: fmt.Sprintf("http://localhost:%d/callback", port),
		StartedAt:   u.now(),
	}
	provider := u.deps.Provider(clientID, clientSecret)
	authURL := provider.AuthCodeURL(pending.State, pending.RedirectURI)

	if u.deps.OnAuthURL != nil {
		u.deps.OnAuthURL(authURL)
	}
	if u.deps.Browser != nil {
		if err := u.deps.Browser.Open(authURL); err != nil {
			lg.WithField("error", err).Warn("could not open browser, open the URL manually")
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, u.deps.Timeout)
	defer cancel()
	res, err := listener.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", model.ErrCallbackTimeout, u.deps.Timeout)
		}
		return nil, err
	}
	if cerr := listener.Close(); cerr != nil {
		lg.WithField("error", cerr).Warn("closing callback listener")
	}

	if res.Error != "" {
		return nil, &model.AuthorizationDeniedError{Code: res.Error, Description: res.ErrorDescription}
	}
	if subtle.ConstantTimeCompare([]byte(res.State), []byte(pending.State)) != 1 {
		return nil, model.ErrStateMismatch
	}

	grant, err := provider.Exchange(ctx, res.Code, pending.RedirectURI)
	if err != nil {
		return nil, err
	}
	identity, err := provider.FetchIdentity(ctx, grant.AccessToken)
	if err != nil {
		return nil, err
	}

	cred := &model.Credential{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		PersonURN:    identity.PersonURN(),
		DisplayName:  identity.Name,
		ExpiresAt:    grant.ExpiresAt(),
	}
	if err := u.deps.Credentials.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("persisting credential: %w", err)
	}

	lg.WithField("person_urn", cred.PersonURN).Info("authorization completed")
	return cred, nil
}

func newState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
