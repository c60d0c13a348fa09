package dto

// Wire shapes of the LinkedIn REST API (versioned /rest surface).

// InitializeUploadRequest is the body of POST /images?action=initializeUpload.
type InitializeUploadRequest struct {
	InitializeUploadRequest InitializeUploadOwner `json:"initializeUploadRequest"`
}

type InitializeUploadOwner struct {
	Owner string `json:"owner"`
}

// InitializeUploadResponse may arrive wrapped in "value" or as a direct body.
type InitializeUploadResponse struct {
	Value     *InitializeUploadValue `json:"value,omitempty"`
	UploadURL string                 `json:"uploadUrl,omitempty"`
	Image     string                 `json:"image,omitempty"`
}

type InitializeUploadValue struct {
	UploadURL          string `json:"uploadUrl"`
	Image              string `json:"image"`
	UploadURLExpiresAt int64  `json:"uploadUrlExpiresAt,omitempty"`
}

// PostPayload is the body of POST /posts.
type PostPayload struct {
	Author                    string       `json:"author"`
	Commentary                string       `json:"commentary"`
	Visibility                string       `json:"visibility"`
	Distribution              Distribution `json:"distribution"`
	Content                   *PostContent `json:"content,omitempty"`
	LifecycleState            string       `json:"lifecycleState"`
	IsReshareDisabledByAuthor bool         `json:"isReshareDisabledByAuthor"`
}

type Distribution struct {
	FeedDistribution               string   `json:"feedDistribution"`
	TargetEntities                 []string `json:"targetEntities"`
	ThirdPartyDistributionChannels []string `json:"thirdPartyDistributionChannels"`
}

// PostContent holds exactly one of the variant shapes.
type PostContent struct {
	Media      *MediaContent      `json:"media,omitempty"`
	MultiImage *MultiImageContent `json:"multiImage,omitempty"`
	Article    *ArticleContent    `json:"article,omitempty"`
}

type MediaContent struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	AltText string `json:"altText,omitempty"`
}

type MultiImageContent struct {
	Images []MultiImageEntry `json:"images"`
}

type MultiImageEntry struct {
	ID      string `json:"id"`
	AltText string `json:"altText,omitempty"`
}

type ArticleContent struct {
	Source      string `json:"source"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// NewPostPayload fills the fixed distribution fields used for member posts.
func NewPostPayload(author, commentary, visibility string, content *PostContent) PostPayload {
	return PostPayload{
		Author:     author,
		Commentary: commentary,
		Visibility: visibility,
		Distribution: Distribution{
			FeedDistribution:               "MAIN_FEED",
			TargetEntities:                 []string{},
			ThirdPartyDistributionChannels: []string{},
		},
		Content:                   content,
		LifecycleState:            "PUBLISHED",
		IsReshareDisabledByAuthor: false,
	}
}

// PostResponse is the subset of GET /posts/{urn} that is read back.
type PostResponse struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	Commentary     string `json:"commentary"`
	Visibility     string `json:"visibility"`
	LifecycleState string `json:"lifecycleState"`
}

// CommentListQuery is encoded with go-querystring.
type CommentListQuery struct {
	Start int `url:"start"`
	Count int `url:"count"`
}

type CommentListResponse struct {
	Elements []CommentElement `json:"elements"`
	Paging   *Paging          `json:"paging,omitempty"`
}

type Paging struct {
	Start int `json:"start"`
	Count int `json:"count"`
	Total int `json:"total"`
}

type CommentElement struct {
	ID           string        `json:"id"`
	CommentURN   string        `json:"commentUrn"`
	Actor        string        `json:"actor"`
	Message      CommentText   `json:"message"`
	Created      *AuditStamp   `json:"created,omitempty"`
	LikesSummary *LikesSummary `json:"likesSummary,omitempty"`
}

type CommentText struct {
	Text string `json:"text"`
}

type AuditStamp struct {
	Time int64 `json:"time"`
}

type LikesSummary struct {
	TotalLikes int `json:"totalLikes"`
}

// CreateCommentRequest is the body of POST /socialActions/{urn}/comments.
type CreateCommentRequest struct {
	Actor         string      `json:"actor"`
	Object        string      `json:"object"`
	Message       CommentText `json:"message"`
	ParentComment string      `json:"parentComment,omitempty"`
}

type CreateCommentResponse struct {
	ID         string `json:"id,omitempty"`
	CommentURN string `json:"commentUrn,omitempty"`
}

// UserInfoResponse is the OpenID userinfo body.
type UserInfoResponse struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
