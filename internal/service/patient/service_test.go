package patient

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/security"
)

var testLogger = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})

type fakePatientRepo struct {
	createdPatient *model.Patient
	createdUser    *model.User
	updated        *model.Patient
}

func (f *fakePatientRepo) Create(_ context.Context, patient *model.Patient, user *model.User) error {
	f.createdPatient = patient
	f.createdUser = user
	return nil
}

func (f *fakePatientRepo) Get(context.Context, uuid.UUID) (*model.Patient, error) {
	return nil, model.ErrNotFound
}

func (f *fakePatientRepo) GetByUser(context.Context, uuid.UUID) (*model.Patient, error) {
	return nil, model.ErrNotFound
}

func (f *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	f.updated = patient
	return nil
}

func (f *fakePatientRepo) List(context.Context, *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) Get(context.Context, uuid.UUID) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (fakeUserRepo) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, model.ErrNotFound
}

func newTestService(repo *fakePatientRepo) *Service {
	return NewService(repo, fakeUserRepo{}, security.NewBcryptHasher(4), testLogger)
}

func TestCreatePatient(t *testing.T) {
	repo := &fakePatientRepo{}
	s := newTestService(repo)

	staffID := uuid.New()
	patient, err := s.CreatePatient(context.Background(), &model.CreatePatientRequest{
		Email:       "Maria.Reyes@example.com",
		FirstName:   "Maria",
		LastName:    "Reyes",
		DateOfBirth: "1990-06-21",
		Gender:      "F",
		Phone:       "09171234567",
		BloodType:   "O+",
		Allergies:   "penicillin",
	}, &staffID)
	require.NoError(t, err)
	assert.Same(t, patient, repo.createdPatient)

	assert.Equal(t, time.Date(1990, 6, 21, 0, 0, 0, 0, time.UTC), patient.DateOfBirth)
	assert.Equal(t, model.Gender("F"), patient.Gender)
	assert.Equal(t, "O+", patient.BloodType)
	assert.Equal(t, &staffID, patient.CreatedBy)

	user := repo.createdUser
	require.NotNil(t, user)
	assert.Equal(t, "maria.reyes", user.Username)
	assert.Equal(t, "Maria", user.FirstName)
	assert.False(t, user.IsActive, "the account stays inactive until the patient claims it")
	assert.NotEmpty(t, user.PasswordHash)
}

func TestCreatePatientDefaultsBloodType(t *testing.T) {
	repo := &fakePatientRepo{}
	s := newTestService(repo)

	patient, err := s.CreatePatient(context.Background(), &model.CreatePatientRequest{
		Email:       "jose@example.com",
		FirstName:   "Jose",
		DateOfBirth: "1985-01-02",
		Gender:      "M",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "UK", patient.BloodType)
}

func TestCreatePatientRejectsBadDateOfBirth(t *testing.T) {
	repo := &fakePatientRepo{}
	s := newTestService(repo)

	_, err := s.CreatePatient(context.Background(), &model.CreatePatientRequest{
		Email:       "jose@example.com",
		FirstName:   "Jose",
		DateOfBirth: "21-06-1990",
		Gender:      "M",
	}, nil)
	assert.Error(t, err)
	assert.Nil(t, repo.createdPatient)
}

func TestUpdatePatient(t *testing.T) {
	repo := &fakePatientRepo{}
	s := newTestService(repo)

	patient := &model.Patient{Phone: "09998887766"}
	patient.ID = uuid.New()
	require.NoError(t, s.UpdatePatient(context.Background(), patient))
	assert.Same(t, patient, repo.updated)
}
