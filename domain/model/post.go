package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinMultiImages = 2
	MaxMultiImages = 20

	// DefaultTruncationThreshold is the observed length at which LinkedIn starts
	// silently shortening commentary.
	DefaultTruncationThreshold = 3000

	ComposeURL = "https://www.linkedin.com/feed/?shareActive=true"
)

var (
	ErrEmptyText          = errors.New("post text is required")
	ErrImageCount         = errors.New("invalid image count")
	ErrMissingArticleURL  = errors.New("article posts require a url")
	ErrInvalidVisibility  = errors.New("visibility must be PUBLIC or CONNECTIONS")
	ErrUnknownPostVariant = errors.New("unknown post variant")
)

type PostVariant string

const (
	PostVariantText       PostVariant = "text"
	PostVariantImage      PostVariant = "image"
	PostVariantMultiImage PostVariant = "multi_image"
	PostVariantArticle    PostVariant = "article"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "PUBLIC"
	VisibilityConnections Visibility = "CONNECTIONS"
)

// ParseVisibility accepts the two provider values case-insensitively; empty means PUBLIC.
func ParseVisibility(v string) (Visibility, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", string(VisibilityPublic):
		return VisibilityPublic, nil
	case string(VisibilityConnections):
		return VisibilityConnections, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVisibility, v)
}

// ImageInput is a local image to upload, with optional alt text.
type ImageInput struct {
	Path    string `json:"path"`
	AltText string `json:"alt_text,omitempty"`
}

// ArticleLink is the link target of an article post.
type ArticleLink struct {
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// PostRequest is built fresh per invocation and never persisted.
type PostRequest struct {
	Variant    PostVariant  `json:"variant"`
	Text       string       `json:"text"`
	Images     []ImageInput `json:"images,omitempty"`
	ImageTitle string       `json:"image_title,omitempty"`
	Article    *ArticleLink `json:"article,omitempty"`
	Visibility Visibility   `json:"visibility"`
	// Preview uploads media and stops short of publishing.
	Preview bool `json:"preview"`
}

// TextLength counts characters, not bytes.
func (r PostRequest) TextLength() int {
	return utf8.RuneCountInString(r.Text)
}

// Validate runs every check that must pass before any network call.
func (r *PostRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	vis, err := ParseVisibility(string(r.Visibility))
	if err != nil {
		return err
	}
	r.Visibility = vis

	switch r.Variant {
	case PostVariantText:
		if len(r.Images) != 0 {
			return fmt.Errorf("%w: text posts take no images, got %d", ErrImageCount, len(r.Images))
		}
	case PostVariantImage:
		if len(r.Images) != 1 {
			return fmt.Errorf("%w: single-image posts take exactly 1 image, got %d", ErrImageCount, len(r.Images))
		}
	case PostVariantMultiImage:
		return ValidateMultiImageCount(len(r.Images))
	case PostVariantArticle:
		if r.Article == nil || strings.TrimSpace(r.Article.URL) == "" {
			return ErrMissingArticleURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPostVariant, r.Variant)
	}
	return nil
}

// ValidateMultiImageCount enforces the [2,20] range of multi-image posts.
func ValidateMultiImageCount(n int) error {
	if n < MinMultiImages || n > MaxMultiImages {
		return fmt.Errorf("%w: multi-image posts require %d-%d images, got %d", ErrImageCount, MinMultiImages, MaxMultiImages, n)
	}
	return nil
}

// TextLengthWarning is set when the text is at or above the truncation threshold.
type TextLengthWarning struct {
	Length    int `json:"length"`
	Threshold int `json:"threshold"`
}

func (w TextLengthWarning) Error() string {
	return fmt.Sprintf("text is %d chars, at or above LinkedIn's ~%d char limit; the post may be silently truncated", w.Length, w.Threshold)
}

// CheckTextLength returns a warning when length >= threshold, nil otherwise.
func CheckTextLength(text string, threshold int) *TextLengthWarning {
	if threshold <= 0 {
		threshold = DefaultTruncationThreshold
	}
	n := utf8.RuneCountInString(text)
	if n >= threshold {
		return &TextLengthWarning{Length: n, Threshold: threshold}
	}
	return nil
}

// MediaAsset is an image uploaded to LinkedIn's servers.
type MediaAsset struct {
	URN       string `json:"urn"`
	UploadURL string `json:"upload_url"`
	AltText   string `json:"alt_text,omitempty"`
}

// PublishResult is returned for both published and preview runs.
type PublishResult struct {
	Variant     PostVariant         `json:"variant"`
	PostURN     string              `json:"post_urn,omitempty"`
	Preview     bool                `json:"preview"`
	Assets      []MediaAsset        `json:"assets,omitempty"`
	Thumbnail   *MediaAsset         `json:"thumbnail,omitempty"`
	TextLength  int                 `json:"text_length"`
	LengthWarn  *TextLengthWarning  `json:"length_warning,omitempty"`
	Verified    *VerificationResult `json:"verification,omitempty"`
	PublishedAt time.Time           `json:"published_at"`
}

type VerificationOutcome string

const (
	VerificationIntact      VerificationOutcome = "intact"
	VerificationTruncated   VerificationOutcome = "truncated"
	VerificationUnavailable VerificationOutcome = "unavailable"
)

// VerificationResult keeps "could not check" apart from "checked and fine".
type VerificationResult struct {
	Outcome      VerificationOutcome `json:"outcome"`
	SentLength   int                 `json:"sent_length"`
	StoredLength int                 `json:"stored_length"`
	// StoredTail is the last stored characters, set when truncated.
	StoredTail string `json:"stored_tail,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// StoredPercent is the stored share of the sent text, 0 when nothing was sent.
func (v VerificationResult) StoredPercent() int {
	if v.SentLength == 0 {
		return 0
	}
	return v.StoredLength * 100 / v.SentLength
}

// CompareCommentary classifies a read-back of a post's commentary.
func CompareCommentary(sent, stored string) VerificationResult {
	sentLen := utf8.RuneCountInString(sent)
	storedLen := utf8.RuneCountInString(stored)
	res := VerificationResult{SentLength: sentLen, StoredLength: storedLen}
	if storedLen < sentLen {
		res.Outcome = VerificationTruncated
		res.StoredTail = tail(stored, 80)
		return res
	}
	res.Outcome = VerificationIntact
	return res
}

// Unverifiable is the result when the read-back was not possible.
func Unverifiable(sent string, reason string) VerificationResult {
	return VerificationResult{
		Outcome:    VerificationUnavailable,
		SentLength: utf8.RuneCountInString(sent),
		Reason:     reason,
	}
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// Head returns at most n leading characters.
func Head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Tail returns at most n trailing characters.
func Tail(s string, n int) string { return tail(s, n) }
