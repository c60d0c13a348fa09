package model

import "time"

// Comment on a post. URN and ID are composite provider identifiers
// (e.g. urn:li:comment:(urn:li:activity:1,2)) and are never parsed.
type Comment struct {
	URN       string    `json:"comment_urn"`
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CommentPage is one page of a comment listing.
type CommentPage struct {
	PostURN  string    `json:"post_urn"`
	Start    int       `json:"start"`
	Count    int       `json:"count"`
	Comments []Comment `json:"comments"`
}

// CommentRef identifies a created comment or reply.
type CommentRef struct {
	ID  string `json:"id"`
	URN string `json:"urn,omitempty"`
}

// PublishRecord is one entry of the optional publish history.
type PublishRecord struct {
	ID           int64               `json:"id"`
	PostURN      string              `json:"post_urn"`
	AuthorURN    string              `json:"author_urn"`
	Variant      PostVariant         `json:"variant"`
	Visibility   Visibility          `json:"visibility"`
	SentLength   int                 `json:"sent_length"`
	StoredLength *int                `json:"stored_length,omitempty"`
	Verification VerificationOutcome `json:"verification"`
	MediaCount   int                 `json:"media_count"`
	CreatedAt    time.Time           `json:"created_at"`
}
