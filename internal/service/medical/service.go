package medical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/repository"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

type Servicer interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	ListRecordsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error)

	Prescribe(ctx context.Context, recordID uuid.UUID, req *model.PrescribeRequest, prescribedBy *uuid.UUID) (*model.Prescription, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	ListPrescriptions(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error)
	DeletePrescription(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	recordRepo       repository.MedicalRecordRepository
	prescriptionRepo repository.PrescriptionRepository
	inventoryRepo    repository.InventoryRepository
	logger           *logger.Logger
	metrics          *metrics.Metrics
}

func NewService(
	recordRepo repository.MedicalRecordRepository,
	prescriptionRepo repository.PrescriptionRepository,
	inventoryRepo repository.InventoryRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		recordRepo:       recordRepo,
		prescriptionRepo: prescriptionRepo,
		inventoryRepo:    inventoryRepo,
		logger:           logger,
		metrics:          metrics,
	}
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	return s.recordRepo.Get(ctx, id)
}

func (s *Service) ListRecordsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	return s.recordRepo.ListByPatient(ctx, patientID)
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	record, err := s.recordRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChiefComplaint != nil {
		record.ChiefComplaint = *req.ChiefComplaint
	}
	if req.Symptoms != nil {
		record.Symptoms = *req.Symptoms
	}
	if req.Diagnosis != nil {
		record.Diagnosis = *req.Diagnosis
	}
	if req.TreatmentPlan != nil {
		record.TreatmentPlan = *req.TreatmentPlan
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.FollowUpDate != nil {
		if *req.FollowUpDate == "" {
			record.FollowUpDate = nil
		} else {
			followUp, err := time.Parse("2006-01-02", *req.FollowUpDate)
			if err != nil {
				return nil, fmt.Errorf("invalid follow-up date: %w", err)
			}
			record.FollowUpDate = &followUp
		}
	}

	if err := s.recordRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Prescribe creates a prescription under the record. Inventory-backed
// medicines deduct stock and default their unit price from the item;
// custom medicines take the caller's price as given.
func (s *Service) Prescribe(ctx context.Context, recordID uuid.UUID, req *model.PrescribeRequest, prescribedBy *uuid.UUID) (*model.Prescription, error) {
	prescription := &model.Prescription{
		MedicalRecordID: recordID,
		Quantity:        req.Quantity,
		Dosage:          req.Dosage,
		Duration:        req.Duration,
		Instructions:    req.Instructions,
		UnitPrice:       req.UnitPrice,
		PrescribedBy:    prescribedBy,
	}

	if req.MedicineID != "" {
		medicineID, err := uuid.Parse(req.MedicineID)
		if err != nil {
			return nil, fmt.Errorf("invalid medicine ID: %w", err)
		}
		item, err := s.inventoryRepo.Get(ctx, medicineID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve medicine: %w", err)
		}
		prescription.MedicineID = &medicineID
		prescription.CustomMedicineName = item.Name
		if prescription.UnitPrice.IsZero() {
			prescription.UnitPrice = item.Price
		}
	} else {
		if req.CustomMedicineName == "" {
			return nil, fmt.Errorf("either medicine_id or custom_medicine_name is required")
		}
		prescription.CustomMedicineName = req.CustomMedicineName
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, err
	}

	if prescription.MedicineID != nil {
		s.metrics.StockDeductions.WithLabelValues("prescription").Inc()
	}
	s.logger.Info("prescription created",
		"record_id", recordID.String(),
		"medicine", prescription.CustomMedicineName,
		"quantity", prescription.Quantity)
	return prescription, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	return s.prescriptionRepo.Get(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error) {
	return s.prescriptionRepo.ListByRecord(ctx, recordID)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.prescriptionRepo.Delete(ctx, id)
}
