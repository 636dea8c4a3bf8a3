package volunteer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/id"
	"github.com/samber/lo"
)

type Service interface {
	Register(ctx context.Context, userID string, req domain.RegisterVolunteerRequest) (*domain.VolunteerRegistration, error)
	ListForEvent(ctx context.Context, eventID string) ([]domain.VolunteerRegistration, error)
}

type volunteerStore interface {
	Put(ctx context.Context, reg *domain.VolunteerRegistration) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.VolunteerRegistration, error)
}

type postStore interface {
	Get(ctx context.Context, postID string) (*domain.Post, error)
	AddVolunteers(ctx context.Context, postID string, delta, capacity int) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	volunteers    volunteerStore
	posts         postStore
	notifications notificationStore
	mailer        mailer
}

// NewService wires event signups. mailer may be nil; confirmation emails are
// then skipped.
func NewService(volunteers volunteerStore, posts postStore, notifications notificationStore, m mailer) Service {
	return &service{volunteers: volunteers, posts: posts, notifications: notifications, mailer: m}
}

func (s *service) Register(ctx context.Context, userID string, req domain.RegisterVolunteerRequest) (*domain.VolunteerRegistration, error) {
	p, err := s.posts.Get(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if p.PostType != domain.PostTypeEvent {
		return nil, fmt.Errorf("post %s is not an event: %w", req.EventID, domain.ErrBadRequest)
	}
	if p.RequiredVolunteers > 0 && p.RegisteredVolunteers >= p.RequiredVolunteers {
		return nil, fmt.Errorf("event is full: %w", domain.ErrConflict)
	}

	existing, err := s.volunteers.ListByEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(existing, func(r domain.VolunteerRegistration) bool { return r.UserID == userID }) {
		return nil, fmt.Errorf("already registered for this event: %w", domain.ErrConflict)
	}

	// Claim a slot first. The conditional add is what actually enforces
	// capacity under concurrent signups; the check above is a fast path.
	if err := s.posts.AddVolunteers(ctx, req.EventID, 1, p.RequiredVolunteers); err != nil {
		return nil, err
	}

	reg := &domain.VolunteerRegistration{
		RegistrationID: id.New(),
		EventID:        req.EventID,
		UserID:         userID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.volunteers.Put(ctx, reg); err != nil {
		if relErr := s.posts.AddVolunteers(ctx, req.EventID, -1, 0); relErr != nil {
			slog.Warn("failed to release volunteer slot", "event_id", req.EventID, "err", relErr)
		}
		return nil, err
	}

	if err := s.notifications.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         p.Author,
		Title:          "New volunteer",
		Message:        fmt.Sprintf("%s signed up for %q", req.Name, p.Title),
		Kind:           domain.NotificationEvent,
		RelatedID:      p.PostID,
		Location:       p.LocationText,
		Date:           p.Date,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to store volunteer notification", "event_id", req.EventID, "err", err)
	}

	s.sendConfirmation(reg, p)
	return reg, nil
}

func (s *service) ListForEvent(ctx context.Context, eventID string) ([]domain.VolunteerRegistration, error) {
	return s.volunteers.ListByEvent(ctx, eventID)
}

// sendConfirmation is best effort; a mail failure never blocks the signup.
func (s *service) sendConfirmation(reg *domain.VolunteerRegistration, p *domain.Post) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nYou are registered for %q on %s %s.\nLocation: %s\n",
		reg.Name, p.Title, p.Date, p.Time, p.LocationText)
	if err := s.mailer.SendEmail(reg.Email, "Registration confirmed", body); err != nil {
		slog.Warn("failed to send confirmation email", "to", reg.Email, "err", err)
	}
}
