package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	pkgauth "github.com/rmagtibay/clinic-api/pkg/auth"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/security"
)

var testLogger = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})

type fakeUserRepo struct {
	user *model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, model.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, model.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.user == nil || f.user.Username != username {
		return nil, model.ErrNotFound
	}
	return f.user, nil
}

type fakeTokenRepo struct {
	token string
	user  *model.User

	gotHash string
}

func (f *fakeTokenRepo) ResetPassword(_ context.Context, token string, newPasswordHash string) (*model.User, error) {
	if token != f.token {
		return nil, model.ErrNotFound
	}
	f.gotHash = newPasswordHash
	f.user.PasswordHash = newPasswordHash
	f.user.IsActive = true
	return f.user, nil
}

func activeUser(t *testing.T, hasher security.PasswordHasher, password string) *model.User {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	u := &model.User{
		Username:     "reception",
		Email:        "reception@clinic.ph",
		PasswordHash: hash,
		IsStaff:      true,
		IsActive:     true,
	}
	u.ID = uuid.New()
	return u
}

type fakeMailer struct {
	welcomeTo   string
	welcomeName string
}

func (f *fakeMailer) SendPasswordReset(context.Context, string, string) error { return nil }

func (f *fakeMailer) SendWelcome(_ context.Context, to, name string) error {
	f.welcomeTo = to
	f.welcomeName = name
	return nil
}

func (f *fakeMailer) SendReceipt(context.Context, string, string, string) error { return nil }

func newTestService(users *fakeUserRepo, tokens *fakeTokenRepo, mailer *fakeMailer) (*Service, security.PasswordHasher) {
	hasher := security.NewBcryptHasher(4)
	jwtSvc := pkgauth.NewJWTService("access-secret", "refresh-secret", 1)
	return NewService(users, tokens, jwtSvc, hasher, mailer, testLogger), hasher
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	users := &fakeUserRepo{}
	s, hasher := newTestService(users, &fakeTokenRepo{}, &fakeMailer{})
	users.user = activeUser(t, hasher, "correct-pass")

	pair, err := s.Login(context.Background(), &LoginRequest{Login: "reception", Password: "correct-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, users.user, pair.User)

	_, err = s.Login(context.Background(), &LoginRequest{Login: "reception@clinic.ph", Password: "correct-pass"})
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := &fakeUserRepo{}
	s, hasher := newTestService(users, &fakeTokenRepo{}, &fakeMailer{})
	users.user = activeUser(t, hasher, "correct-pass")

	_, err := s.Login(context.Background(), &LoginRequest{Login: "reception", Password: "wrong-pass"})
	assert.EqualError(t, err, "invalid credentials")

	_, err = s.Login(context.Background(), &LoginRequest{Login: "nobody", Password: "correct-pass"})
	assert.EqualError(t, err, "invalid credentials", "unknown user must not be distinguishable")
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	users := &fakeUserRepo{}
	s, hasher := newTestService(users, &fakeTokenRepo{}, &fakeMailer{})
	users.user = activeUser(t, hasher, "correct-pass")
	users.user.IsActive = false

	_, err := s.Login(context.Background(), &LoginRequest{Login: "reception", Password: "correct-pass"})
	assert.EqualError(t, err, "account is not active")
}

func TestRefresh(t *testing.T) {
	users := &fakeUserRepo{}
	s, hasher := newTestService(users, &fakeTokenRepo{}, &fakeMailer{})
	users.user = activeUser(t, hasher, "correct-pass")

	pair, err := s.Login(context.Background(), &LoginRequest{Login: "reception", Password: "correct-pass"})
	require.NoError(t, err)

	refreshed, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = s.Refresh(context.Background(), pair.AccessToken)
	assert.Error(t, err, "access token must not work as a refresh token")
}

func TestResetPasswordActivatesAccount(t *testing.T) {
	users := &fakeUserRepo{}
	tokens := &fakeTokenRepo{token: "valid-token"}
	mailer := &fakeMailer{}
	s, hasher := newTestService(users, tokens, mailer)

	provisioned := activeUser(t, hasher, "generated-pass")
	provisioned.IsActive = false
	tokens.user = provisioned
	users.user = provisioned

	user, err := s.ResetPassword(context.Background(), &ResetPasswordRequest{
		Token:    "valid-token",
		Password: "my-new-password",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NoError(t, hasher.Compare(tokens.gotHash, "my-new-password"))
	assert.Equal(t, "reception@clinic.ph", mailer.welcomeTo, "activation sends the welcome mail")

	// The patient can log in with the chosen password now.
	_, err = s.Login(context.Background(), &LoginRequest{Login: "reception", Password: "my-new-password"})
	assert.NoError(t, err)

	_, err = s.ResetPassword(context.Background(), &ResetPasswordRequest{Token: "bad-token", Password: "irrelevant-pass"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
