package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockIndividualStore struct{ mock.Mock }

func (m *mockIndividualStore) GetByEmail(ctx context.Context, email string) (*domain.Individual, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.Individual); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIndividualStore) Put(ctx context.Context, ind *domain.Individual) error {
	return m.Called(ctx, ind).Error(0)
}

type mockNGOStore struct{ mock.Mock }

func (m *mockNGOStore) GetByEmail(ctx context.Context, email string) (*domain.NGO, error) {
	args := m.Called(ctx, email)
	if n, _ := args.Get(0).(*domain.NGO); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNGOStore) Put(ctx context.Context, n *domain.NGO) error {
	return m.Called(ctx, n).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, kind, name string) (string, error) {
	args := m.Called(userID, kind, name)
	return args.String(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- tests ---

func TestRegisterIndividual_Success(t *testing.T) {
	inds := new(mockIndividualStore)
	signer := new(mockSigner)
	mail := new(mockMailer)
	svc := NewService(inds, nil, signer, mail)

	inds.On("GetByEmail", mock.Anything, "ada@example.org").Return(nil, domain.ErrNotFound)
	inds.On("Put", mock.Anything, mock.MatchedBy(func(i *domain.Individual) bool {
		return i.IndividualID != "" && i.Email == "ada@example.org" && i.PasswordHash != "secret-pass"
	})).Return(nil)
	signer.On("Sign", mock.Anything, domain.KindIndividual, "Ada Lovelace").Return("tok", nil)
	mail.On("SendEmail", "ada@example.org", "Welcome", mock.Anything).Return(nil)

	resp, err := svc.RegisterIndividual(context.Background(), domain.RegisterIndividualRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		Password:  "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "Ada Lovelace", resp.User.Name())
	// Stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("secret-pass")))
	inds.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestRegisterIndividual_DuplicateEmail(t *testing.T) {
	inds := new(mockIndividualStore)
	svc := NewService(inds, nil, new(mockSigner), nil)

	inds.On("GetByEmail", mock.Anything, "ada@example.org").
		Return(&domain.Individual{IndividualID: "existing"}, nil)

	_, err := svc.RegisterIndividual(context.Background(), domain.RegisterIndividualRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.org", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterIndividual_MailFailureDoesNotBlock(t *testing.T) {
	inds := new(mockIndividualStore)
	signer := new(mockSigner)
	mail := new(mockMailer)
	svc := NewService(inds, nil, signer, mail)

	inds.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	inds.On("Put", mock.Anything, mock.Anything).Return(nil)
	signer.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("tok", nil)
	mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	resp, err := svc.RegisterIndividual(context.Background(), domain.RegisterIndividualRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.org", Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
}

func TestLoginIndividual_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	inds := new(mockIndividualStore)
	signer := new(mockSigner)
	svc := NewService(inds, nil, signer, nil)

	inds.On("GetByEmail", mock.Anything, "ada@example.org").Return(&domain.Individual{
		IndividualID: "ind-1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.org",
		PasswordHash: string(hash),
	}, nil)
	signer.On("Sign", "ind-1", domain.KindIndividual, "Ada Lovelace").Return("tok", nil)

	resp, err := svc.LoginIndividual(context.Background(), LoginRequest{Email: "ada@example.org", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "ind-1", resp.User.IndividualID)
}

func TestLoginIndividual_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	inds := new(mockIndividualStore)
	svc := NewService(inds, nil, new(mockSigner), nil)

	inds.On("GetByEmail", mock.Anything, "ada@example.org").
		Return(&domain.Individual{PasswordHash: string(hash)}, nil)

	_, err := svc.LoginIndividual(context.Background(), LoginRequest{Email: "ada@example.org", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginIndividual_UnknownEmailMapsToUnauthorized(t *testing.T) {
	inds := new(mockIndividualStore)
	svc := NewService(inds, nil, new(mockSigner), nil)

	inds.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	_, err := svc.LoginIndividual(context.Background(), LoginRequest{Email: "ghost@example.org", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterNGO_Success(t *testing.T) {
	ngos := new(mockNGOStore)
	signer := new(mockSigner)
	svc := NewService(nil, ngos, signer, nil)

	ngos.On("GetByEmail", mock.Anything, "org@example.org").Return(nil, domain.ErrNotFound)
	ngos.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.NGO) bool {
		return n.NGOID != "" && n.Name == "Green Earth"
	})).Return(nil)
	signer.On("Sign", mock.Anything, domain.KindNGO, "Green Earth").Return("tok", nil)

	resp, err := svc.RegisterNGO(context.Background(), domain.RegisterNGORequest{
		Name:     "Green Earth",
		Email:    "org@example.org",
		Password: "secret-pass",
		Domains:  []string{"environment"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, []string{"environment"}, resp.User.Domains)
}

func TestLoginNGO_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	ngos := new(mockNGOStore)
	svc := NewService(nil, ngos, new(mockSigner), nil)

	ngos.On("GetByEmail", mock.Anything, "org@example.org").
		Return(&domain.NGO{PasswordHash: string(hash)}, nil)

	_, err := svc.LoginNGO(context.Background(), LoginRequest{Email: "org@example.org", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// The router leaves the signer nil when JWT keys are missing; the flows
// must error instead of panicking, and before anything is stored.
func TestAuth_NilSignerErrorsWithoutStoreWrites(t *testing.T) {
	inds := new(mockIndividualStore)
	ngos := new(mockNGOStore)
	svc := NewService(inds, ngos, nil, nil)

	_, err := svc.RegisterIndividual(context.Background(), domain.RegisterIndividualRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		Password:  "secret-pass",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	_, err = svc.LoginIndividual(context.Background(), LoginRequest{Email: "ada@example.org", Password: "secret-pass"})
	require.Error(t, err)

	_, err = svc.RegisterNGO(context.Background(), domain.RegisterNGORequest{
		Name: "Green Earth", Email: "org@example.org", Password: "secret-pass",
	})
	require.Error(t, err)

	_, err = svc.LoginNGO(context.Background(), LoginRequest{Email: "org@example.org", Password: "secret-pass"})
	require.Error(t, err)

	inds.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	ngos.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}
