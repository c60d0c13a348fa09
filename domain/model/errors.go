package model

import (
	"errors"
	"fmt"
)

// Authorization flow failures. Each aborts the flow and leaves any prior
// credential record untouched.
var (
	ErrMissingClientCredentials = errors.New("oauth: client id and client secret are required")
	ErrListenerBind             = errors.New("oauth: cannot bind callback listener")
	ErrCallbackTimeout          = errors.New("oauth: timed out waiting for the authorization callback")
	ErrStateMismatch            = errors.New("oauth: state mismatch, possible request forgery")
	ErrAuthorizationDenied      = errors.New("oauth: authorization denied")
	ErrTokenExchange            = errors.New("oauth: token exchange rejected")
	ErrMalformedTokenResponse   = errors.New("oauth: malformed token response")
	ErrTokenTransport           = errors.New("oauth: token endpoint unreachable")
	ErrIdentityLookup           = errors.New("oauth: identity lookup failed")
)

// AuthorizationDeniedError carries the provider's error parameters verbatim.
type AuthorizationDeniedError struct {
	Code        string
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s: %s", ErrAuthorizationDenied, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", ErrAuthorizationDenied, e.Code, e.Description)
}

func (e *AuthorizationDeniedError) Unwrap() error { return ErrAuthorizationDenied }

// TokenExchangeError is a non-2xx answer from the token endpoint.
type TokenExchangeError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *TokenExchangeError) Error() string {
	msg := fmt.Sprintf("%s: status %d", ErrTokenExchange, e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

func (e *TokenExchangeError) Unwrap() error { return ErrTokenExchange }
