package repository

import (
	"context"
	"io"

	"linkedin-publisher/domain/dto"
	"linkedin-publisher/domain/model"
)

// ILinkedIn defines the LinkedIn REST operations used by the usecases.
// Each call is independent and stateless.
type ILinkedIn interface {
	// Media upload, two steps
	InitializeUpload(ctx context.Context, ownerURN string) (*model.MediaAsset, error)
	UploadBinary(ctx context.Context, asset *model.MediaAsset, body io.Reader, size int64) error

	// Posts
	CreatePost(ctx context.Context, payload dto.PostPayload) (string, error)
	GetPost(ctx context.Context, postURN string) (*dto.PostResponse, error)

	// Comments
	ListComments(ctx context.Context, postURN string, start, count int) (*model.CommentPage, error)
	CreateComment(ctx context.Context, postURN, actorURN, text string) (*model.CommentRef, error)
	ReplyComment(ctx context.Context, postURN, parentCommentURN, actorURN, text string) (*model.CommentRef, error)

	// Identity re-fetch
	GetUserInfo(ctx context.Context) (*model.Identity, error)
}

// ILinkedInFactory builds a client bound to one access token.
type ILinkedInFactory func(accessToken string) ILinkedIn
