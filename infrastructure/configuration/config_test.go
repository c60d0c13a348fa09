package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load("config-missing", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9876, cfg.LinkedIn.CallbackPort)
	assert.Equal(t, 120, cfg.LinkedIn.CallbackTimeoutSeconds)
	assert.Equal(t, "202601", cfg.LinkedIn.APIVersion)
	assert.Equal(t, []string{"openid", "profile", "w_member_social"}, cfg.LinkedIn.Scopes)
	assert.Equal(t, 3000, cfg.LinkedIn.TruncationThreshold)
	assert.Equal(t, "127.0.0.1", cfg.App.Host)
	assert.False(t, cfg.Database.Psql.Enabled())
}

func TestLoad_ReadsJSONFile(t *testing.T) {
	dir := t.TempDir()
	body := `{
		"linkedin": {"clientId": "abc", "callbackPort": 9000, "truncationThreshold": 2500},
		"database": {"psql": {"host": "db", "name": "history"}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config-unit.json"), []byte(body), 0o600))

	cfg, err := load("config-unit", dir)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.LinkedIn.ClientID)
	assert.Equal(t, 9000, cfg.LinkedIn.CallbackPort)
	assert.Equal(t, 2500, cfg.LinkedIn.TruncationThreshold)
	assert.True(t, cfg.Database.Psql.Enabled())
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config-bad.json"), []byte("{not json"), 0o600))

	_, err := load("config-bad", dir)
	require.Error(t, err)
}

func TestGetLinkedInConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LINKEDIN_CLIENT_ID", "env-client")
	t.Setenv("LINKEDIN_CALLBACK_PORT", "7777")
	t.Setenv("LINKEDIN_CREDENTIALS_PATH", "/tmp/creds.md")

	cfg, err := load("config-missing", t.TempDir())
	require.NoError(t, err)
	cfg.LinkedIn.ClientID = "file-client"

	li, err := GetLinkedInConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "env-client", li.ClientID)
	assert.Equal(t, 7777, li.CallbackPort)
	assert.Equal(t, "http://localhost:7777/callback", li.RedirectURI())
	assert.Equal(t, "/tmp/creds.md", li.CredentialsPath)
	assert.Equal(t, 120*time.Second, li.CallbackTimeout)
}

func TestGetLinkedInConfig_PlaceholderIgnored(t *testing.T) {
	cfg := Config{LinkedIn: LinkedIn{ClientID: "YOUR_CLIENT_ID", CredentialsPath: "/x/creds.md"}}

	li, err := GetLinkedInConfig(cfg)
	require.NoError(t, err)

	assert.Empty(t, li.ClientID)
	assert.Equal(t, 9876, li.CallbackPort)
	assert.Equal(t, 3000, li.TruncationThreshold)
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\n\nexport LP_TEST_A=\"one\"\nLP_TEST_B=two\nLP_TEST_PRESET=file\nnot-a-pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("LP_TEST_PRESET", "env")
	t.Cleanup(func() {
		os.Unsetenv("LP_TEST_A")
		os.Unsetenv("LP_TEST_B")
	})

	loaded := LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "one", os.Getenv("LP_TEST_A"))
	assert.Equal(t, "two", os.Getenv("LP_TEST_B"))
	assert.Equal(t, "env", os.Getenv("LP_TEST_PRESET"))
}
