package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"linkedin-publisher/domain/dto"
	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/clients/linkedin"
	"linkedin-publisher/infrastructure/logger"

	"github.com/dustin/go-humanize"
)

var ErrHistoryDisabled = errors.New("publish history is not configured")

type IPublishUsecase interface {
	Publish(ctx context.Context, req model.PostRequest) (*model.PublishResult, error)
	UploadImage(ctx context.Context, path string) (*model.MediaAsset, error)
	Verify(ctx context.Context, postURN, sentText string) model.VerificationResult
	GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error)
	History(ctx context.Context, limit int) ([]*model.PublishRecord, error)
}

type PublishOptions struct {
	TruncationThreshold int
	// OnUpload is called before each image upload starts.
	OnUpload func(index, total int, path string)
}

type publishUsecase struct {
	credentials repository.ICredential
	clients     repository.ILinkedInFactory
	history     repository.IPublishHistory
	opts        PublishOptions
	now         func() time.Time
}

// NewPublishUsecase wires the publishing flow; history may be nil.
func NewPublishUsecase(credentials repository.ICredential, clients repository.ILinkedInFactory, history repository.IPublishHistory, opts PublishOptions) IPublishUsecase {
	if opts.TruncationThreshold <= 0 {
		opts.TruncationThreshold = model.DefaultTruncationThreshold
	}
	return &publishUsecase{
		credentials: credentials,
		clients:     clients,
		history:     history,
		opts:        opts,
		now:         time.Now,
	}
}

// Publish validates, uploads media one by one, then creates and verifies the
// post. In preview mode it stops after the uploads.
func (u *publishUsecase) Publish(ctx context.Context, req model.PostRequest) (*model.PublishResult, error) {
	lg := logger.GetLogger()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := u.checkFiles(req); err != nil {
		return nil, err
	}

	result := &model.PublishResult{
		Variant:    req.Variant,
		Preview:    req.Preview,
		TextLength: req.TextLength(),
		LengthWarn: model.CheckTextLength(req.Text, u.opts.TruncationThreshold),
	}
	if result.LengthWarn != nil {
		lg.WithField("length", result.LengthWarn.Length).Warn("post text at or above truncation threshold")
	}

	cred, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}

	for i, img := range req.Images {
		if u.opts.OnUpload != nil {
			u.opts.OnUpload(i+1, len(req.Images), img.Path)
		}
		asset, err := u.upload(ctx, client, cred.PersonURN, img.Path)
		if err != nil {
			return nil, fmt.Errorf("uploading image %d/%d %s: %w", i+1, len(req.Images), img.Path, err)
		}
		asset.AltText = img.AltText
		result.Assets = append(result.Assets, *asset)
	}
	if req.Article != nil && req.Article.ThumbnailPath != "" {
		thumb, err := u.upload(ctx, client, cred.PersonURN, req.Article.ThumbnailPath)
		if err != nil {
			return nil, fmt.Errorf("uploading thumbnail %s: %w", req.Article.ThumbnailPath, err)
		}
		result.Thumbnail = thumb
	}

	if req.Preview {
		return result, nil
	}

	payload := dto.NewPostPayload(cred.PersonURN, req.Text, string(req.Visibility), buildContent(req, result))
	postURN, err := client.CreatePost(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	result.PostURN = postURN
	result.PublishedAt = u.now().UTC()

	var verification model.VerificationResult
	if postURN == "" {
		verification = model.Unverifiable(req.Text, "post id missing from response")
	} else {
		verification = u.verifyWith(ctx, client, postURN, req.Text)
	}
	result.Verified = &verification

	u.record(ctx, cred, req, result)
	return result, nil
}

func buildContent(req model.PostRequest, res *model.PublishResult) *dto.PostContent {
	switch req.Variant {
	case model.PostVariantImage:
		img := res.Assets[0]
		return &dto.PostContent{Media: &dto.MediaContent{ID: img.URN, Title: req.ImageTitle, AltText: img.AltText}}
	case model.PostVariantMultiImage:
		entries := make([]dto.MultiImageEntry, 0, len(res.Assets))
		for _, a := range res.Assets {
			entries = append(entries, dto.MultiImageEntry{ID: a.URN, AltText: a.AltText})
		}
		return &dto.PostContent{MultiImage: &dto.MultiImageContent{Images: entries}}
	case model.PostVariantArticle:
		art := &dto.ArticleContent{
			Source:      req.Article.URL,
			Title:       req.Article.Title,
			Description: req.Article.Description,
		}
		if res.Thumbnail != nil {
			art.Thumbnail = res.Thumbnail.URN
		}
		return &dto.PostContent{Article: art}
	}
	return nil
}

func (u *publishUsecase) checkFiles(req model.PostRequest) error {
	paths := make([]string, 0, len(req.Images)+1)
	for _, img := range req.Images {
		paths = append(paths, img.Path)
	}
	if req.Article != nil && req.Article.ThumbnailPath != "" {
		paths = append(paths, req.Article.ThumbnailPath)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrImageNotFound, p)
		}
	}
	return nil
}

func (u *publishUsecase) upload(ctx context.Context, client repository.ILinkedIn, ownerURN, path string) (*model.MediaAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	asset, err := client.InitializeUpload(ctx, ownerURN)
	if err != nil {
		return nil, err
	}
	if err := client.UploadBinary(ctx, asset, f, info.Size()); err != nil {
		return nil, err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"image": asset.URN,
		"size":  humanize.Bytes(uint64(info.Size())),
	}).Info("image uploaded")
	return asset, nil
}

// UploadImage uploads one image without creating a post.
func (u *publishUsecase) UploadImage(ctx context.Context, path string) (*model.MediaAsset, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	cred, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}
	return u.upload(ctx, client, cred.PersonURN, path)
}

// Verify reads the post back. It never fails: a read that is not possible is
// reported as unavailable.
func (u *publishUsecase) Verify(ctx context.Context, postURN, sentText string) model.VerificationResult {
	_, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return model.Unverifiable(sentText, err.Error())
	}
	return u.verifyWith(ctx, client, postURN, sentText)
}

func (u *publishUsecase) verifyWith(ctx context.Context, client repository.ILinkedIn, postURN, sentText string) model.VerificationResult {
	post, err := client.GetPost(ctx, postURN)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, linkedin.ErrPermissionGated) {
			reason = "reading posts back requires additional API permissions"
		}
		logger.GetLogger().WithField("post_urn", postURN).WithField("error", err).Warn("post verification unavailable")
		return model.Unverifiable(sentText, reason)
	}
	res := model.CompareCommentary(sentText, post.Commentary)
	if res.Outcome == model.VerificationTruncated {
		logger.GetLogger().WithFields(map[string]interface{}{
			"post_urn": postURN,
			"sent":     res.SentLength,
			"stored":   res.StoredLength,
		}).Warn("post text truncated by LinkedIn")
	}
	return res
}

// GetPost returns the stored post, commentary included.
func (u *publishUsecase) GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error) {
	if postURN == "" {
		return nil, ErrMissingURN
	}
	_, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}
	post, err := client.GetPost(ctx, postURN)
	if err != nil {
		if errors.Is(err, linkedin.ErrPermissionGated) {
			return nil, fmt.Errorf("%w: %w", ErrElevatedAccessRequired, err)
		}
		return nil, err
	}
	return post, nil
}

func (u *publishUsecase) record(ctx context.Context, cred *model.Credential, req model.PostRequest, res *model.PublishResult) {
	if u.history == nil {
		return
	}
	rec := &model.PublishRecord{
		PostURN:    res.PostURN,
		AuthorURN:  cred.PersonURN,
		Variant:    req.Variant,
		Visibility: req.Visibility,
		SentLength: res.TextLength,
		MediaCount: len(res.Assets),
		CreatedAt:  res.PublishedAt,
	}
	if res.Verified != nil {
		rec.Verification = res.Verified.Outcome
		if res.Verified.Outcome != model.VerificationUnavailable {
			stored := res.Verified.StoredLength
			rec.StoredLength = &stored
		}
	}
	if err := u.history.Record(ctx, rec); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed recording publish history")
	}
}

// History lists the most recent published posts.
func (u *publishUsecase) History(ctx context.Context, limit int) ([]*model.PublishRecord, error) {
	if u.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	return u.history.ListRecent(ctx, limit)
}
