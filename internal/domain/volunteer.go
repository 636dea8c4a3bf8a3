package domain

import "time"

// VolunteerRegistration records one user signing up for an event post.
type VolunteerRegistration struct {
	RegistrationID string    `json:"id" dynamodbav:"registration_id"`
	EventID        string    `json:"eventId" dynamodbav:"event_id"`
	UserID         string    `json:"userId" dynamodbav:"user_id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Email          string    `json:"email" dynamodbav:"email"`
	Phone          string    `json:"phone,omitempty" dynamodbav:"phone"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
}

type RegisterVolunteerRequest struct {
	EventID string `json:"eventId" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
}
