package model

import (
	"fmt"
	"math"
	"time"
)

// DefaultTokenLifetime is used when the token endpoint omits expires_in (60 days).
const DefaultTokenLifetime = 5184000 * time.Second

// Credential is the single persisted LinkedIn credential record.
// It is replaced in full on every successful authorization.
type Credential struct {
	ClientID     string    `yaml:"client_id" json:"client_id"`
	ClientSecret string    `yaml:"client_secret" json:"-"`
	AccessToken  string    `yaml:"access_token" json:"-"`
	RefreshToken string    `yaml:"refresh_token,omitempty" json:"-"`
	PersonURN    string    `yaml:"person_urn" json:"person_urn"`
	DisplayName  string    `yaml:"display_name" json:"display_name"`
	ExpiresAt    time.Time `yaml:"-" json:"expires_at"`
}

// IsExpired reports whether the access token is past its advisory expiry.
func (c *Credential) IsExpired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// DaysRemaining rounds the time left until expiry to whole days.
func (c *Credential) DaysRemaining(now time.Time) int {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return int(math.Round(c.ExpiresAt.Sub(now).Hours() / 24))
}

// String never includes the secret or the tokens.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{client_id=%s, client_secret=%s, access_token=%s, person_urn=%s, display_name=%q, expires_at=%s}",
		c.ClientID, Redact(c.ClientSecret), Redact(c.AccessToken), c.PersonURN, c.DisplayName, c.ExpiresAt.Format(time.RFC3339))
}

// Redact hides everything but the last four characters of a secret value.
func Redact(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

// PendingAuthorization lives only for one authorization run and is never persisted.
type PendingAuthorization struct {
	State       string
	Scopes      []string
	RedirectURI string
	StartedAt   time.Time
}

// Identity is the authenticated LinkedIn member returned by the userinfo endpoint.
type Identity struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
}

// PersonURN builds the member URN used as author and actor in API calls.
func (i Identity) PersonURN() string {
	return "urn:li:person:" + i.Subject
}

// AuthState is the outcome of a credential check.
type AuthState string

const (
	AuthStateAbsent  AuthState = "absent"
	AuthStateExpired AuthState = "expired"
	AuthStateValid   AuthState = "valid"
)

// AuthStatus is reported by check-auth and the bridge status endpoint.
type AuthStatus struct {
	State         AuthState  `json:"state"`
	PersonURN     string     `json:"person_urn,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
	// IdentityVerified is only set when a live userinfo call was requested.
	IdentityVerified *bool  `json:"identity_verified,omitempty"`
	IdentityError    string `json:"identity_error,omitempty"`
}

// Summary is the one-line human readable status.
func (s AuthStatus) Summary() string {
	switch s.State {
	case AuthStateValid:
		return fmt.Sprintf("authenticated, %d days remaining", s.DaysRemaining)
	case AuthStateExpired:
		return "expired, re-authorization required"
	default:
		return "not authenticated, run setup"
	}
}

// TokenGrant is the parsed answer of the token endpoint.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
	ExpiresIn    time.Duration
	Scope        string
}

// ExpiresAt is issuance time plus the provider-reported lifetime.
func (g TokenGrant) ExpiresAt() time.Time {
	lifetime := g.ExpiresIn
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return g.IssuedAt.Add(lifetime)
}

// CallbackResult holds the query parameters of the first well-formed callback.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}
