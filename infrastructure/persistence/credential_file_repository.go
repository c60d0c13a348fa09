package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// ErrCredentialInvalid is returned when the file exists but cannot be used.
var ErrCredentialInvalid = errors.New("credential file is invalid")

const frontmatterDelim = "---"

// credentialFile is the YAML frontmatter layout of the settings file.
type credentialFile struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	AccessToken    string `yaml:"access_token"`
	RefreshToken   string `yaml:"refresh_token,omitempty"`
	PersonURN      string `yaml:"person_urn"`
	DisplayName    string `yaml:"display_name"`
	TokenExpiresAt int64  `yaml:"token_expires_at"`
}

// CredentialFileRepository stores the credential record as a markdown file
// with YAML frontmatter at a user-scoped path.
type CredentialFileRepository struct {
	path string
}

var _ repository.ICredential = (*CredentialFileRepository)(nil)

func NewCredentialFileRepository(path string) *CredentialFileRepository {
	return &CredentialFileRepository{path: path}
}

func (r *CredentialFileRepository) Path() string { return r.path }

// Load reads the record from disk on every call.
func (r *CredentialFileRepository) Load(ctx context.Context) (*model.Credential, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	front, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	var cf credentialFile
	if err := yaml.Unmarshal(front, &cf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}
	if cf.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrCredentialInvalid)
	}
	if cf.PersonURN == "" {
		return nil, fmt.Errorf("%w: missing person_urn", ErrCredentialInvalid)
	}

	cred := &model.Credential{
		ClientID:     cf.ClientID,
		ClientSecret: cf.ClientSecret,
		AccessToken:  cf.AccessToken,
		RefreshToken: cf.RefreshToken,
		PersonURN:    cf.PersonURN,
		DisplayName:  cf.DisplayName,
	}
	if cf.TokenExpiresAt > 0 {
		cred.ExpiresAt = time.Unix(cf.TokenExpiresAt, 0)
	}
	return cred, nil
}

// Save replaces the whole file via a temp file and rename, so an interrupted
// write never leaves a half-written record behind.
func (r *CredentialFileRepository) Save(ctx context.Context, cred *model.Credential) error {
	if cred == nil {
		return fmt.Errorf("%w: nil credential", ErrCredentialInvalid)
	}
	content, err := renderCredentialFile(cred)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

func renderCredentialFile(cred *model.Credential) ([]byte, error) {
	cf := credentialFile{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		PersonURN:    cred.PersonURN,
		DisplayName:  cred.DisplayName,
	}
	if !cred.ExpiresAt.IsZero() {
		cf.TokenExpiresAt = cred.ExpiresAt.Unix()
	}
	front, err := yaml.Marshal(cf)
	if err != nil {
		return nil, fmt.Errorf("encoding credential file: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(frontmatterDelim + "\n")
	b.Write(front)
	b.WriteString(frontmatterDelim + "\n\n")
	b.WriteString("# LinkedIn Publisher Settings\n\n")
	fmt.Fprintf(&b, "Authenticated as **%s** (%s).\n\n", cred.DisplayName, cred.PersonURN)
	if !cred.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "Token expires at: %s\n\n", cred.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	b.WriteString("To re-authenticate, run `linkedin-publisher setup` again.\n")
	return b.Bytes(), nil
}

func splitFrontmatter(data []byte) ([]byte, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return nil, fmt.Errorf("%w: missing frontmatter", ErrCredentialInvalid)
	}
	rest := text[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated frontmatter", ErrCredentialInvalid)
	}
	return []byte(rest[:end+1]), nil
}
