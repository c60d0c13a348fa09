package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LinkedInConfig is the resolved configuration handed to the authorization
// flow and the API client.
type LinkedInConfig struct {
	ClientID            string
	ClientSecret        string
	CallbackPort        int
	CallbackTimeout     time.Duration
	RequestTimeout      time.Duration
	AuthURL             string
	TokenURL            string
	UserInfoURL         string
	APIBaseURL          string
	APIVersion          string
	Scopes              []string
	TruncationThreshold int
	CredentialsPath     string
}

// RedirectURI is the loopback callback registered with the LinkedIn app.
func (c LinkedInConfig) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", c.CallbackPort)
}

// GetLinkedInConfig resolves C.LinkedIn with environment variable overrides.
func GetLinkedInConfig(c Config) (*LinkedInConfig, error) {
	li := c.LinkedIn
	credPath := getConfigValue(li.CredentialsPath, "LINKEDIN_CREDENTIALS_PATH", "")
	if credPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		credPath = filepath.Join(home, ".claude", "linkedin.local.md")
	}

	cfg := &LinkedInConfig{
		ClientID:            getConfigValue(li.ClientID, "LINKEDIN_CLIENT_ID", ""),
		ClientSecret:        getConfigValue(li.ClientSecret, "LINKEDIN_CLIENT_SECRET", ""),
		CallbackPort:        getEnvInt("LINKEDIN_CALLBACK_PORT", li.CallbackPort),
		CallbackTimeout:     time.Duration(getEnvInt("LINKEDIN_CALLBACK_TIMEOUT", li.CallbackTimeoutSeconds)) * time.Second,
		RequestTimeout:      time.Duration(li.RequestTimeoutSeconds) * time.Second,
		AuthURL:             li.AuthURL,
		TokenURL:            li.TokenURL,
		UserInfoURL:         li.UserInfoURL,
		APIBaseURL:          getConfigValue(li.APIBaseURL, "LINKEDIN_API_BASE_URL", "https://api.linkedin.com/rest"),
		APIVersion:          getConfigValue(li.APIVersion, "LINKEDIN_VERSION", "202601"),
		Scopes:              li.Scopes,
		TruncationThreshold: getEnvInt("LINKEDIN_TRUNCATION_THRESHOLD", li.TruncationThreshold),
		CredentialsPath:     credPath,
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = 9876
	}
	if cfg.CallbackTimeout <= 0 {
		cfg.CallbackTimeout = 120 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "w_member_social"}
	}
	if cfg.TruncationThreshold <= 0 {
		cfg.TruncationThreshold = 3000
	}
	return cfg, nil
}
