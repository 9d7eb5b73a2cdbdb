package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/security"
)

type Servicer interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest, createdBy *uuid.UUID) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, patient *model.Patient) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

// Service covers staff-driven patient management. Auto-provisioning on
// consultation completion lives in the booking pipeline, not here.
type Service struct {
	repo     repository.PatientRepository
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(
	repo repository.PatientRepository,
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, createdBy *uuid.UUID) (*model.Patient, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("invalid date of birth: %w", err)
	}

	password, err := security.GeneratePassword(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	bloodType := req.BloodType
	if bloodType == "" {
		bloodType = "UK"
	}

	user := &model.User{
		Username:     model.UsernameFromEmail(req.Email),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     false,
	}
	patient := &model.Patient{
		DateOfBirth:           dob,
		Gender:                model.Gender(req.Gender),
		Phone:                 req.Phone,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		BloodType:             bloodType,
		Allergies:             req.Allergies,
		CreatedBy:             createdBy,
	}

	if err := s.repo.Create(ctx, patient, user); err != nil {
		return nil, err
	}

	s.logger.Info("patient created",
		"patient_id", patient.ID.String(),
		"email", req.Email)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	return s.repo.Update(ctx, patient)
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}
