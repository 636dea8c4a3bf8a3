package domain

import "time"

// NGO is an organization account.
type NGO struct {
	NGOID        string    `json:"id" dynamodbav:"ngo_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Description  string    `json:"description,omitempty" dynamodbav:"description"`
	Domains      []string  `json:"domains,omitempty" dynamodbav:"domains"`
	Avatar       string    `json:"avatar,omitempty" dynamodbav:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty" dynamodbav:"cover_image"`
	CreatedAt    time.Time `json:"joinedDate" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"-" dynamodbav:"updated_at"`
}

type RegisterNGORequest struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Description string   `json:"description"`
	Domains     []string `json:"domains"`
}

type UpdateNGORequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Domains     *[]string `json:"domains"`
	Avatar      *string   `json:"avatar"`
	CoverImage  *string   `json:"coverImage"`
}
