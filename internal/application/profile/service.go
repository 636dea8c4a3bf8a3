package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ngo-connect-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName   = "first_name"
	fieldLastName    = "last_name"
	fieldName        = "name"
	fieldDescription = "description"
	fieldCity        = "city"
	fieldState       = "state"
	fieldCountry     = "country"
	fieldDomains     = "domains"
	fieldAvatar      = "avatar"
	fieldCoverImage  = "cover_image"
	fieldUpdatedAt   = "updated_at"
)

type Service interface {
	GetIndividual(ctx context.Context, individualID string) (*domain.Individual, error)
	UpdateIndividual(ctx context.Context, individualID string, req domain.UpdateIndividualRequest) (*domain.Individual, error)
	GetNGO(ctx context.Context, ngoID string) (*domain.NGO, error)
	UpdateNGO(ctx context.Context, ngoID string, req domain.UpdateNGORequest) (*domain.NGO, error)
}

type individualStore interface {
	Get(ctx context.Context, individualID string) (*domain.Individual, error)
	Update(ctx context.Context, individualID string, updates map[string]interface{}) error
}

type ngoStore interface {
	Get(ctx context.Context, ngoID string) (*domain.NGO, error)
	Update(ctx context.Context, ngoID string, updates map[string]interface{}) error
}

type imageStore interface {
	UploadBase64(ctx context.Context, key, data string) (string, error)
}

type service struct {
	individuals individualStore
	ngos        ngoStore
	images      imageStore
}

// NewService wires profile reads and partial updates. images may be nil when
// no bucket is configured; base64 uploads are then rejected.
func NewService(individuals individualStore, ngos ngoStore, images imageStore) Service {
	return &service{individuals: individuals, ngos: ngos, images: images}
}

func (s *service) GetIndividual(ctx context.Context, individualID string) (*domain.Individual, error) {
	return s.individuals.Get(ctx, individualID)
}

func (s *service) UpdateIndividual(ctx context.Context, individualID string, req domain.UpdateIndividualRequest) (*domain.Individual, error) {
	updates := map[string]interface{}{}
	setStr(updates, fieldFirstName, req.FirstName)
	setStr(updates, fieldLastName, req.LastName)
	setStr(updates, fieldDescription, req.Description)
	setStr(updates, fieldCity, req.City)
	setStr(updates, fieldState, req.State)
	setStr(updates, fieldCountry, req.Country)
	if req.Domains != nil {
		updates[fieldDomains] = *req.Domains
	}
	if err := s.setImage(ctx, updates, fieldAvatar, "avatars/"+individualID, req.Avatar); err != nil {
		return nil, err
	}
	if err := s.setImage(ctx, updates, fieldCoverImage, "covers/"+individualID, req.CoverImage); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.individuals.Update(ctx, individualID, updates); err != nil {
		return nil, err
	}
	return s.individuals.Get(ctx, individualID)
}

func (s *service) GetNGO(ctx context.Context, ngoID string) (*domain.NGO, error) {
	return s.ngos.Get(ctx, ngoID)
}

func (s *service) UpdateNGO(ctx context.Context, ngoID string, req domain.UpdateNGORequest) (*domain.NGO, error) {
	updates := map[string]interface{}{}
	setStr(updates, fieldName, req.Name)
	setStr(updates, fieldDescription, req.Description)
	if req.Domains != nil {
		updates[fieldDomains] = *req.Domains
	}
	if err := s.setImage(ctx, updates, fieldAvatar, "avatars/"+ngoID, req.Avatar); err != nil {
		return nil, err
	}
	if err := s.setImage(ctx, updates, fieldCoverImage, "covers/"+ngoID, req.CoverImage); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.ngos.Update(ctx, ngoID, updates); err != nil {
		return nil, err
	}
	return s.ngos.Get(ctx, ngoID)
}

// setImage stores either a plain URL as-is or uploads a base64 payload and
// stores the resulting URL.
func (s *service) setImage(ctx context.Context, updates map[string]interface{}, field, key string, value *string) error {
	if value == nil {
		return nil
	}
	v := *value
	if v == "" || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		updates[field] = v
		return nil
	}
	if s.images == nil {
		return fmt.Errorf("image uploads are not configured: %w", domain.ErrBadRequest)
	}
	url, err := s.images.UploadBase64(ctx, key, v)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	updates[field] = url
	return nil
}

func setStr(updates map[string]interface{}, field string, value *string) {
	if value != nil {
		updates[field] = *value
	}
}
