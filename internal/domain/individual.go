package domain

import (
	"strings"
	"time"
)

// Individual is a personal (volunteer) account.
type Individual struct {
	IndividualID string    `json:"id" dynamodbav:"individual_id"`
	FirstName    string    `json:"firstName" dynamodbav:"first_name"`
	LastName     string    `json:"lastName" dynamodbav:"last_name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Description  string    `json:"description,omitempty" dynamodbav:"description"`
	City         string    `json:"city,omitempty" dynamodbav:"city"`
	State        string    `json:"state,omitempty" dynamodbav:"state"`
	Country      string    `json:"country,omitempty" dynamodbav:"country"`
	Domains      []string  `json:"domain,omitempty" dynamodbav:"domains"`
	Avatar       string    `json:"avatar,omitempty" dynamodbav:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty" dynamodbav:"cover_image"`
	CreatedAt    time.Time `json:"joinedDate" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"-" dynamodbav:"updated_at"`
}

// Name returns the display name used in feeds, chats and notifications.
func (i *Individual) Name() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

type RegisterIndividualRequest struct {
	FirstName       string   `json:"firstName" validate:"required"`
	LastName        string   `json:"lastName" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8,max=72"`
	Description     string   `json:"description"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Country         string   `json:"country"`
	FieldOfInterest []string `json:"fieldOfInterest"`
}

type UpdateIndividualRequest struct {
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	Description *string   `json:"description"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	Country     *string   `json:"country"`
	Domains     *[]string `json:"domain"`
	Avatar      *string   `json:"avatar"`
	CoverImage  *string   `json:"coverImage"`
}
