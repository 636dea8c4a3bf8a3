package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// IndividualAuthResponse is returned on successful individual login/register.
type IndividualAuthResponse struct {
	Token string             `json:"token"`
	User  *domain.Individual `json:"user"`
}

// NGOAuthResponse is returned on successful NGO login/register.
type NGOAuthResponse struct {
	Token string      `json:"token"`
	User  *domain.NGO `json:"user"`
}

type Service interface {
	RegisterIndividual(ctx context.Context, req domain.RegisterIndividualRequest) (*IndividualAuthResponse, error)
	LoginIndividual(ctx context.Context, req LoginRequest) (*IndividualAuthResponse, error)
	RegisterNGO(ctx context.Context, req domain.RegisterNGORequest) (*NGOAuthResponse, error)
	LoginNGO(ctx context.Context, req LoginRequest) (*NGOAuthResponse, error)
}

type individualStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Individual, error)
	Put(ctx context.Context, ind *domain.Individual) error
}

type ngoStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.NGO, error)
	Put(ctx context.Context, n *domain.NGO) error
}

type jwtSigner interface {
	Sign(userID, kind, name string) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	individuals individualStore
	ngos        ngoStore
	signer      jwtSigner
	mailer      mailer
}

// NewService wires the auth flows. mailer may be nil when SMTP is not
// configured; welcome emails are skipped in that case. signer may be nil
// when JWT keys are missing; every flow then errors before touching the
// stores instead of issuing tokens.
func NewService(individuals individualStore, ngos ngoStore, signer jwtSigner, m mailer) Service {
	return &service{individuals: individuals, ngos: ngos, signer: signer, mailer: m}
}

func (s *service) RegisterIndividual(ctx context.Context, req domain.RegisterIndividualRequest) (*IndividualAuthResponse, error) {
	if s.signer == nil {
		return nil, errors.New("token signing is not configured")
	}
	if _, err := s.individuals.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	ind := &domain.Individual{
		IndividualID: id.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Description:  req.Description,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Domains:      req.FieldOfInterest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.individuals.Put(ctx, ind); err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(ind.IndividualID, domain.KindIndividual, ind.Name())
	if err != nil {
		return nil, err
	}
	s.sendWelcome(ind.Email, ind.Name())
	return &IndividualAuthResponse{Token: token, User: ind}, nil
}

func (s *service) LoginIndividual(ctx context.Context, req LoginRequest) (*IndividualAuthResponse, error) {
	if s.signer == nil {
		return nil, errors.New("token signing is not configured")
	}
	ind, err := s.individuals.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(ind.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := s.signer.Sign(ind.IndividualID, domain.KindIndividual, ind.Name())
	if err != nil {
		return nil, err
	}
	return &IndividualAuthResponse{Token: token, User: ind}, nil
}

func (s *service) RegisterNGO(ctx context.Context, req domain.RegisterNGORequest) (*NGOAuthResponse, error) {
	if s.signer == nil {
		return nil, errors.New("token signing is not configured")
	}
	if _, err := s.ngos.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	n := &domain.NGO{
		NGOID:        id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Description:  req.Description,
		Domains:      req.Domains,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.ngos.Put(ctx, n); err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(n.NGOID, domain.KindNGO, n.Name)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(n.Email, n.Name)
	return &NGOAuthResponse{Token: token, User: n}, nil
}

func (s *service) LoginNGO(ctx context.Context, req LoginRequest) (*NGOAuthResponse, error) {
	if s.signer == nil {
		return nil, errors.New("token signing is not configured")
	}
	n, err := s.ngos.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(n.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := s.signer.Sign(n.NGOID, domain.KindNGO, n.Name)
	if err != nil {
		return nil, err
	}
	return &NGOAuthResponse{Token: token, User: n}, nil
}

// sendWelcome is best effort; a mail failure never blocks registration.
func (s *service) sendWelcome(to, name string) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your account is ready.\n", name)
	if err := s.mailer.SendEmail(to, "Welcome", body); err != nil {
		slog.Warn("failed to send welcome email", "to", to, "err", err)
	}
}
