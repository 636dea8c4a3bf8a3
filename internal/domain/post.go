package domain

import "time"

// Post types.
const (
	PostTypeEvent = "event"
	PostTypeVlog  = "vlog"
)

// Post is a feed entry: a volunteering event or a vlog article.
// Event-only fields are empty/zero on vlogs.
type Post struct {
	PostID      string `json:"id" dynamodbav:"post_id"`
	Title       string `json:"title" dynamodbav:"title"`
	Description string `json:"description" dynamodbav:"description"`
	PostType    string `json:"postType" dynamodbav:"post_type"`
	Author      string `json:"author" dynamodbav:"author_id"`
	AuthorModel string `json:"authorModel" dynamodbav:"author_model"`
	AuthorName  string `json:"authorName,omitempty" dynamodbav:"author_name"`
	Domain      string `json:"domain,omitempty" dynamodbav:"domain"`
	LocationText string `json:"locationText,omitempty" dynamodbav:"location_text"`
	Image       string `json:"image,omitempty" dynamodbav:"image"`

	Likes   int      `json:"likes" dynamodbav:"likes"`
	LikedBy []string `json:"-" dynamodbav:"liked_by"`

	Date                 string `json:"date,omitempty" dynamodbav:"event_date"`
	Time                 string `json:"time,omitempty" dynamodbav:"event_time"`
	RequiredVolunteers   int    `json:"requiredVolunteers,omitempty" dynamodbav:"required_volunteers"`
	RegisteredVolunteers int    `json:"registeredVolunteers,omitempty" dynamodbav:"registered_volunteers"`

	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"-" dynamodbav:"updated_at"`
}

// Comment is a single comment on a post.
type Comment struct {
	CommentID  string    `json:"id" dynamodbav:"comment_id"`
	PostID     string    `json:"postId" dynamodbav:"post_id"`
	Author     string    `json:"author" dynamodbav:"author_id"`
	AuthorModel string   `json:"authorModel" dynamodbav:"author_model"`
	AuthorName string    `json:"authorName" dynamodbav:"author_name"`
	Text       string    `json:"text" dynamodbav:"text"`
	CreatedAt  time.Time `json:"createdAt" dynamodbav:"created_at"`
}

type CreatePostRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Domain       string `json:"domain"`
	LocationText string `json:"locationText"`
	// Image is an optional base64-encoded upload from the composer.
	Image string `json:"image"`

	Date               string `json:"date"`
	Time               string `json:"time"`
	RequiredVolunteers int    `json:"requiredVolunteers"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// PostCreatedEvent is the realtime payload pushed on every new post.
type PostCreatedEvent struct {
	Type string `json:"type"` // "event" or "vlog"
	Post *Post  `json:"post"`
}
