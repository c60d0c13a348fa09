package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/domain/repository"
	"linkedin-publisher/infrastructure/clients/linkedin"
)

const (
	DefaultCommentPageSize = 20
	maxCommentPageSize     = 100
)

type ICommentUsecase interface {
	List(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error)
	Create(ctx context.Context, postURN, text string) (*model.CommentRef, error)
	Reply(ctx context.Context, postURN, parentCommentURN, text string) (*model.CommentRef, error)
}

type commentUsecase struct {
	credentials repository.ICredential
	clients     repository.ILinkedInFactory
	now         func() time.Time
}

func NewCommentUsecase(credentials repository.ICredential, clients repository.ILinkedInFactory) ICommentUsecase {
	return &commentUsecase{credentials: credentials, clients: clients, now: time.Now}
}

// List returns one page of comments. Reading comments is a restricted
// permission; a 403 surfaces as ErrElevatedAccessRequired.
func (u *commentUsecase) List(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error) {
	if postURN == "" {
		return nil, ErrMissingURN
	}
	if start < 0 {
		start = 0
	}
	if count <= 0 {
		count = DefaultCommentPageSize
	}
	if count > maxCommentPageSize {
		count = maxCommentPageSize
	}

	_, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}
	page, err := client.ListComments(ctx, postURN, start, count)
	if err != nil {
		return nil, mapCommentError(err)
	}
	return page, nil
}

func (u *commentUsecase) Create(ctx context.Context, postURN, text string) (*model.CommentRef, error) {
	if postURN == "" {
		return nil, ErrMissingURN
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	cred, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}
	ref, err := client.CreateComment(ctx, postURN, cred.PersonURN, text)
	if err != nil {
		return nil, mapCommentError(err)
	}
	return ref, nil
}

// Reply answers a comment. The composite comment URN is passed through unparsed.
func (u *commentUsecase) Reply(ctx context.Context, postURN, parentCommentURN, text string) (*model.CommentRef, error) {
	if postURN == "" || parentCommentURN == "" {
		return nil, ErrMissingURN
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	cred, client, err := session(ctx, u.credentials, u.clients, u.now())
	if err != nil {
		return nil, err
	}
	ref, err := client.ReplyComment(ctx, postURN, parentCommentURN, cred.PersonURN, text)
	if err != nil {
		return nil, mapCommentError(err)
	}
	return ref, nil
}

func mapCommentError(err error) error {
	if errors.Is(err, linkedin.ErrPermissionGated) {
		return fmt.Errorf("%w: %w", ErrElevatedAccessRequired, err)
	}
	return err
}
