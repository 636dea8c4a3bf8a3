package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/id"
	"github.com/ngo-connect-api/internal/realtime"
	"github.com/samber/lo"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldLikes     = "likes"
	fieldLikedBy   = "liked_by"
	fieldUpdatedAt = "updated_at"
)

// Detail is a post together with its comment thread.
type Detail struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// Author identifies who is acting: the token subject plus display data.
type Author struct {
	ID    string
	Model string
	Name  string
}

type Service interface {
	Create(ctx context.Context, author Author, postType string, req domain.CreatePostRequest) (*domain.Post, error)
	ListByType(ctx context.Context, postType string) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID, authorModel, postType string) ([]domain.Post, error)
	Get(ctx context.Context, postID string) (*Detail, error)
	ToggleLike(ctx context.Context, postID string, actor Author) (*LikeResult, error)
	AddComment(ctx context.Context, postID string, actor Author, req domain.AddCommentRequest) (*domain.Comment, error)
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	ListByType(ctx context.Context, postType string) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID, authorModel, postType string) ([]domain.Post, error)
	Update(ctx context.Context, postID string, updates map[string]interface{}) error
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type imageStore interface {
	UploadBase64(ctx context.Context, key, data string) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

type service struct {
	posts         postStore
	comments      commentStore
	notifications notificationStore
	images        imageStore
	broadcast     realtime.Publisher
	topic         topicPublisher
}

// NewService wires the feed. images, broadcast and topic may each be nil;
// the corresponding side effect is then skipped.
func NewService(posts postStore, comments commentStore, notifications notificationStore, images imageStore, broadcast realtime.Publisher, topic topicPublisher) Service {
	return &service{
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		images:        images,
		broadcast:     broadcast,
		topic:         topic,
	}
}

func (s *service) Create(ctx context.Context, author Author, postType string, req domain.CreatePostRequest) (*domain.Post, error) {
	if postType != domain.PostTypeEvent && postType != domain.PostTypeVlog {
		return nil, fmt.Errorf("unknown post type %q: %w", postType, domain.ErrBadRequest)
	}
	if postType == domain.PostTypeEvent && req.Date == "" {
		return nil, fmt.Errorf("event date is required: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	p := &domain.Post{
		PostID:       id.New(),
		Title:        req.Title,
		Description:  req.Description,
		PostType:     postType,
		Author:       author.ID,
		AuthorModel:  author.Model,
		AuthorName:   author.Name,
		Domain:       req.Domain,
		LocationText: req.LocationText,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if postType == domain.PostTypeEvent {
		p.Date = req.Date
		p.Time = req.Time
		p.RequiredVolunteers = req.RequiredVolunteers
	}
	if req.Image != "" {
		if s.images == nil {
			return nil, fmt.Errorf("image uploads are not configured: %w", domain.ErrBadRequest)
		}
		url, err := s.images.UploadBase64(ctx, "posts/"+p.PostID, req.Image)
		if err != nil {
			return nil, fmt.Errorf("upload post image: %w", err)
		}
		p.Image = url
	}

	if err := s.posts.Put(ctx, p); err != nil {
		return nil, err
	}

	if s.broadcast != nil {
		s.broadcast.PublishAll(realtime.EventPostCreated, domain.PostCreatedEvent{Type: p.PostType, Post: p})
	}
	if s.topic != nil {
		if err := s.topic.Publish(ctx, "post.created", p); err != nil {
			slog.Warn("failed to publish post to topic", "post_id", p.PostID, "err", err)
		}
	}
	return p, nil
}

func (s *service) ListByType(ctx context.Context, postType string) ([]domain.Post, error) {
	if postType != domain.PostTypeEvent && postType != domain.PostTypeVlog {
		return nil, fmt.Errorf("unknown post type %q: %w", postType, domain.ErrBadRequest)
	}
	return s.posts.ListByType(ctx, postType)
}

func (s *service) ListByAuthor(ctx context.Context, authorID, authorModel, postType string) ([]domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID, authorModel, postType)
}

func (s *service) Get(ctx context.Context, postID string) (*Detail, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &Detail{Post: p, Comments: comments}, nil
}

func (s *service) ToggleLike(ctx context.Context, postID string, actor Author) (*LikeResult, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := lo.Contains(p.LikedBy, actor.ID)
	var likedBy []string
	if liked {
		likedBy = lo.Without(p.LikedBy, actor.ID)
	} else {
		likedBy = append(p.LikedBy, actor.ID)
	}

	updates := map[string]interface{}{
		fieldLikes:     len(likedBy),
		fieldLikedBy:   likedBy,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.posts.Update(ctx, postID, updates); err != nil {
		return nil, err
	}

	if !liked && p.Author != actor.ID {
		s.notify(ctx, &domain.Notification{
			UserID:    p.Author,
			Title:     "New like",
			Message:   fmt.Sprintf("%s liked your post %q", actor.Name, p.Title),
			Kind:      domain.NotificationPost,
			RelatedID: p.PostID,
			Image:     p.Image,
		})
	}
	return &LikeResult{Likes: len(likedBy), Liked: !liked}, nil
}

func (s *service) AddComment(ctx context.Context, postID string, actor Author, req domain.AddCommentRequest) (*domain.Comment, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := &domain.Comment{
		CommentID:   id.New(),
		PostID:      postID,
		Author:      actor.ID,
		AuthorModel: actor.Model,
		AuthorName:  actor.Name,
		Text:        req.Text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.comments.Put(ctx, c); err != nil {
		return nil, err
	}

	if p.Author != actor.ID {
		s.notify(ctx, &domain.Notification{
			UserID:    p.Author,
			Title:     "New comment",
			Message:   fmt.Sprintf("%s commented on %q: %s", actor.Name, p.Title, req.Text),
			Kind:      domain.NotificationPost,
			RelatedID: p.PostID,
		})
	}
	return c, nil
}

// notify is best effort; a failed notification never fails the action.
func (s *service) notify(ctx context.Context, n *domain.Notification) {
	n.NotificationID = id.New()
	n.CreatedAt = time.Now().UTC()
	if err := s.notifications.Put(ctx, n); err != nil {
		slog.Warn("failed to store notification", "user_id", n.UserID, "err", err)
	}
}
