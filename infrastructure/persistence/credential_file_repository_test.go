package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredential() *model.Credential {
	return &model.Credential{
		ClientID:     "client-1",
		ClientSecret: "secret-value-123",
		AccessToken:  "AQV-token-value",
		RefreshToken: "refresh-1",
		PersonURN:    "urn:li:person:abc123",
		DisplayName:  "Ada Lovelace",
		ExpiresAt:    time.Unix(1893456000, 0),
	}
}

func TestCredentialFileRepository_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linkedin.local.md")
	repo := NewCredentialFileRepository(path)

	require.NoError(t, repo.Save(context.Background(), testCredential()))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testCredential(), got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentialFileRepository_SaveReplacesInFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedin.local.md")
	repo := NewCredentialFileRepository(path)
	require.NoError(t, repo.Save(context.Background(), testCredential()))

	next := &model.Credential{
		ClientID:    "client-2",
		AccessToken: "new-token",
		PersonURN:   "urn:li:person:xyz",
		DisplayName: "Grace Hopper",
	}
	require.NoError(t, repo.Save(context.Background(), next))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "client-2", got.ClientID)
	assert.Empty(t, got.RefreshToken, "old refresh token must not survive a re-authorization")
	assert.Empty(t, got.ClientSecret)
	assert.True(t, got.ExpiresAt.IsZero())
}

func TestCredentialFileRepository_LoadMissing(t *testing.T) {
	repo := NewCredentialFileRepository(filepath.Join(t.TempDir(), "none.md"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestCredentialFileRepository_LoadInvalid(t *testing.T) {
	cases := map[string]string{
		"no frontmatter": "client_id: x\n",
		"unterminated":   "---\naccess_token: x\n",
		"missing token":  "---\nperson_urn: urn:li:person:1\n---\n",
		"missing urn":    "---\naccess_token: tok\n---\n",
		"broken yaml":    "---\naccess_token: [unclosed\n---\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "creds.md")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

			_, err := NewCredentialFileRepository(path).Load(context.Background())
			require.ErrorIs(t, err, ErrCredentialInvalid)
		})
	}
}

func TestCredentialFileRepository_ReadsLegacyQuotedValues(t *testing.T) {
	body := "---\nclient_id: \"cid\"\nclient_secret: \"sec\"\naccess_token: \"tok\"\nperson_urn: \"urn:li:person:p1\"\ndisplay_name: \"Jo\"\ntoken_expires_at: 1700000000\n---\n\n# LinkedIn Plugin Settings\n"
	path := filepath.Join(t.TempDir(), "linkedin.local.md")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	got, err := NewCredentialFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, "urn:li:person:p1", got.PersonURN)
	assert.Equal(t, int64(1700000000), got.ExpiresAt.Unix())
}

func TestRenderCredentialFile_BodyHasNoToken(t *testing.T) {
	content, err := renderCredentialFile(testCredential())
	require.NoError(t, err)

	parts := strings.SplitN(string(content), "---\n", 3)
	require.Len(t, parts, 3)
	assert.Contains(t, parts[1], "access_token: AQV-token-value")
	body := parts[2]
	assert.NotContains(t, body, "AQV-token-value")
	assert.Contains(t, body, "Ada Lovelace")
}
