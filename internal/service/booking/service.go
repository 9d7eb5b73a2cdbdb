package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmagtibay/clinic-api/internal/email"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/internal/service/catalog"
	apperrors "github.com/rmagtibay/clinic-api/pkg/errors"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
	"github.com/rmagtibay/clinic-api/pkg/security"
)

const (
	provisionedPasswordLen = 16
	resetTokenBytes        = 32
	resetTokenTTL          = 24 * time.Hour
)

type Servicer interface {
	CreateBooking(ctx context.Context, req *model.CreateBookingRequest, createdBy *uuid.UUID) (*model.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	StartConsultation(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	CompleteConsultation(ctx context.Context, id uuid.UUID) (*model.ProvisioningResult, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListAppointments(ctx context.Context, startDate, endDate time.Time) ([]*model.Appointment, error)
}

// Service drives the booking lifecycle. The heavy lifting of the
// consultation-done transition happens in one repository transaction; this
// layer resolves the inputs, then handles the mail and metrics fallout.
type Service struct {
	repo            repository.BookingRepository
	appointmentRepo repository.AppointmentRepository
	catalog         catalog.Servicer
	hasher          security.PasswordHasher
	emailSvc        email.Service
	logger          *logger.Logger
	metrics         *metrics.Metrics
	defaultFee      decimal.Decimal
}

func NewService(
	repo repository.BookingRepository,
	appointmentRepo repository.AppointmentRepository,
	catalogSvc catalog.Servicer,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	defaultFee decimal.Decimal,
) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		catalog:         catalogSvc,
		hasher:          hasher,
		emailSvc:        emailSvc,
		logger:          logger,
		metrics:         metrics,
		defaultFee:      defaultFee,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest, createdBy *uuid.UUID) (*model.Booking, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid booking date, expected YYYY-MM-DD", err)
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid service ID", err)
	}
	if _, err := s.catalog.GetService(ctx, serviceID); err != nil {
		return nil, apperrors.BadRequest("unknown service", err)
	}

	// Early rejection for a friendlier error; the partial unique index on
	// (date, time) still guards against races.
	taken, err := s.repo.SlotTaken(ctx, date, req.Time, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrSlotTaken
	}

	booking := &model.Booking{
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		Date:         date,
		Time:         req.Time,
		ServiceID:    serviceID,
		Notes:        req.Notes,
		CreatedBy:    createdBy,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.metrics.BookingsCreated.Inc()
	s.logger.Info("booking created",
		"booking_id", booking.ID.String(),
		"date", req.Date,
		"time", req.Time)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.BookingsConfirmed.Inc()
	return booking, nil
}

func (s *Service) StartConsultation(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.StartConsultation(ctx, id)
}

// CompleteConsultation provisions the patient account chain for the booking
// and forces it to Completed. A brand-new account gets a password reset mail;
// a mail failure is logged, never rolled back.
func (s *Service) CompleteConsultation(ctx context.Context, id uuid.UUID) (*model.ProvisioningResult, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params, err := s.buildProvisioningParams(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare provisioning: %w", err)
	}

	result, err := s.repo.CompleteConsultation(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.metrics.ConsultationsCompleted.Inc()
	if result.UserCreated {
		s.metrics.UsersProvisioned.Inc()
		if err := s.emailSvc.SendPasswordReset(ctx, booking.PatientEmail, result.ResetToken); err != nil {
			s.logger.Error(err, "failed to send password reset mail",
				"booking_id", id.String(),
				"email", booking.PatientEmail)
		}
	}

	s.logger.Info("consultation completed",
		"booking_id", id.String(),
		"user_created", result.UserCreated,
		"billing_created", result.BillingCreated)
	return result, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.BookingsCancelled.Inc()
	return booking, nil
}

func (s *Service) ListAppointments(ctx context.Context, startDate, endDate time.Time) ([]*model.Appointment, error) {
	return s.appointmentRepo.List(ctx, startDate, endDate)
}

func (s *Service) buildProvisioningParams(ctx context.Context, booking *model.Booking) (*model.ProvisioningParams, error) {
	password, err := security.GeneratePassword(provisionedPasswordLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	resetToken, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	serviceName := "Consultation"
	if svc, err := s.catalog.GetService(ctx, booking.ServiceID); err == nil {
		serviceName = svc.Name
	}

	chiefComplaint := booking.Notes
	if chiefComplaint == "" {
		chiefComplaint = fmt.Sprintf("Scheduled appointment for %s", serviceName)
	}

	first, last := model.SplitFullName(booking.PatientName)
	now := time.Now()

	return &model.ProvisioningParams{
		UsernameBase:     model.UsernameFromEmail(booking.PatientEmail),
		FirstName:        first,
		LastName:         last,
		PasswordHash:     passwordHash,
		ResetToken:       resetToken,
		ResetTokenExpiry: now.Add(resetTokenTTL),

		DateOfBirth: now,
		Gender:      model.GenderOther,

		VisitDate:      now,
		ChiefComplaint: chiefComplaint,
		Symptoms:       fmt.Sprintf("Appointment Type: %s", serviceName),
		Diagnosis:      "Consultation completed",
		TreatmentPlan:  "As prescribed by the doctor",

		ServiceFee:   s.catalog.PriceFor(ctx, booking.ServiceID, s.defaultFee),
		BillingNotes: fmt.Sprintf("Auto-generated for booking on %s %s", booking.Date.Format("2006-01-02"), booking.Time),
	}, nil
}
