package medical

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/logger"
	"github.com/rmagtibay/clinic-api/pkg/metrics"
)

var (
	testLogger  = logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	testMetrics = metrics.NewMetrics("clinic", "medical_test")
)

type fakeRecordRepo struct {
	record  *model.MedicalRecord
	updated *model.MedicalRecord
}

func (f *fakeRecordRepo) Get(_ context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	if f.record == nil || f.record.ID != id {
		return nil, model.ErrNotFound
	}
	return f.record, nil
}

func (f *fakeRecordRepo) ListByPatient(context.Context, uuid.UUID) ([]*model.MedicalRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *model.MedicalRecord) error {
	f.updated = record
	return nil
}

type fakePrescriptionRepo struct {
	created   *model.Prescription
	createErr error
	deletedID uuid.UUID
}

func (f *fakePrescriptionRepo) Create(_ context.Context, prescription *model.Prescription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = prescription
	return nil
}

func (f *fakePrescriptionRepo) Get(context.Context, uuid.UUID) (*model.Prescription, error) {
	return nil, model.ErrNotFound
}

func (f *fakePrescriptionRepo) ListByRecord(context.Context, uuid.UUID) ([]*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.deletedID = id
	return nil
}

type fakeInventoryRepo struct {
	item *model.InventoryItem
}

func (f *fakeInventoryRepo) Create(context.Context, *model.InventoryItem) error { return nil }

func (f *fakeInventoryRepo) Get(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	if f.item == nil || f.item.ID != id {
		return nil, model.ErrNotFound
	}
	return f.item, nil
}

func (f *fakeInventoryRepo) Update(context.Context, *model.InventoryItem) error { return nil }

func (f *fakeInventoryRepo) List(context.Context, *model.InventoryFilters) ([]*model.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) Deduct(context.Context, uuid.UUID, int, *uuid.UUID, string) (*model.InventoryItem, error) {
	return f.item, nil
}

func (f *fakeInventoryRepo) Return(context.Context, uuid.UUID, int, *uuid.UUID, string) (*model.InventoryItem, error) {
	return f.item, nil
}

func (f *fakeInventoryRepo) ListTransactions(context.Context, uuid.UUID) ([]*model.StockTransaction, error) {
	return nil, nil
}

func amoxicillin() *model.InventoryItem {
	item := &model.InventoryItem{
		Name:     "Amoxicillin 500mg",
		Category: model.CategoryMedicine,
		Price:    decimal.NewFromInt(15),
		Quantity: 40,
	}
	item.ID = uuid.New()
	return item
}

func TestPrescribeInventoryMedicineSnapshotsNameAndPrice(t *testing.T) {
	item := amoxicillin()
	prescriptions := &fakePrescriptionRepo{}
	s := NewService(&fakeRecordRepo{}, prescriptions, &fakeInventoryRepo{item: item}, testLogger, testMetrics)

	recordID := uuid.New()
	p, err := s.Prescribe(context.Background(), recordID, &model.PrescribeRequest{
		MedicineID: item.ID.String(),
		Quantity:   10,
		Dosage:     "1 capsule every 8 hours",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, recordID, p.MedicalRecordID)
	require.NotNil(t, p.MedicineID)
	assert.Equal(t, item.ID, *p.MedicineID)
	assert.Equal(t, "Amoxicillin 500mg", p.CustomMedicineName)
	assert.True(t, item.Price.Equal(p.UnitPrice), "unit price defaults from the inventory item")
	assert.Same(t, p, prescriptions.created)
}

func TestPrescribeKeepsExplicitUnitPrice(t *testing.T) {
	item := amoxicillin()
	s := NewService(&fakeRecordRepo{}, &fakePrescriptionRepo{}, &fakeInventoryRepo{item: item}, testLogger, testMetrics)

	discounted := decimal.NewFromInt(8)
	p, err := s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		MedicineID: item.ID.String(),
		Quantity:   5,
		Dosage:     "1 capsule daily",
		UnitPrice:  discounted,
	}, nil)
	require.NoError(t, err)
	assert.True(t, discounted.Equal(p.UnitPrice))
}

func TestPrescribeCustomMedicine(t *testing.T) {
	s := NewService(&fakeRecordRepo{}, &fakePrescriptionRepo{}, &fakeInventoryRepo{}, testLogger, testMetrics)

	p, err := s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		CustomMedicineName: "Herbal supplement",
		Quantity:           1,
		Dosage:             "as directed",
		UnitPrice:          decimal.NewFromInt(120),
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, p.MedicineID)
	assert.Equal(t, "Herbal supplement", p.CustomMedicineName)

	// Neither an inventory reference nor a name is an error.
	_, err = s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		Quantity: 1,
		Dosage:   "as directed",
	}, nil)
	assert.Error(t, err)
}

func TestPrescribeRejectsUnknownMedicine(t *testing.T) {
	s := NewService(&fakeRecordRepo{}, &fakePrescriptionRepo{}, &fakeInventoryRepo{}, testLogger, testMetrics)

	_, err := s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		MedicineID: uuid.New().String(),
		Quantity:   1,
		Dosage:     "1 tablet",
	}, nil)
	assert.Error(t, err)

	_, err = s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		MedicineID: "not-a-uuid",
		Quantity:   1,
		Dosage:     "1 tablet",
	}, nil)
	assert.Error(t, err)
}

func TestPrescribePropagatesInsufficientStock(t *testing.T) {
	item := amoxicillin()
	item.Quantity = 2
	prescriptions := &fakePrescriptionRepo{createErr: model.ErrInsufficientStock}
	s := NewService(&fakeRecordRepo{}, prescriptions, &fakeInventoryRepo{item: item}, testLogger, testMetrics)

	_, err := s.Prescribe(context.Background(), uuid.New(), &model.PrescribeRequest{
		MedicineID: item.ID.String(),
		Quantity:   10,
		Dosage:     "1 capsule every 8 hours",
	}, nil)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
}

func TestDeletePrescription(t *testing.T) {
	prescriptions := &fakePrescriptionRepo{}
	s := NewService(&fakeRecordRepo{}, prescriptions, &fakeInventoryRepo{}, testLogger, testMetrics)

	id := uuid.New()
	require.NoError(t, s.DeletePrescription(context.Background(), id))
	assert.Equal(t, id, prescriptions.deletedID)
}

func TestUpdateRecordAppliesProvidedFields(t *testing.T) {
	record := &model.MedicalRecord{
		ChiefComplaint: "Fever",
		Diagnosis:      "Viral infection",
	}
	record.ID = uuid.New()
	records := &fakeRecordRepo{record: record}
	s := NewService(records, &fakePrescriptionRepo{}, &fakeInventoryRepo{}, testLogger, testMetrics)

	diagnosis := "Bacterial infection"
	followUp := "2026-09-15"
	updated, err := s.UpdateRecord(context.Background(), record.ID, &model.UpdateMedicalRecordRequest{
		Diagnosis:    &diagnosis,
		FollowUpDate: &followUp,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bacterial infection", updated.Diagnosis)
	assert.Equal(t, "Fever", updated.ChiefComplaint, "omitted fields stay untouched")
	require.NotNil(t, updated.FollowUpDate)
	assert.Equal(t, "2026-09-15", updated.FollowUpDate.Format("2006-01-02"))
	assert.Same(t, updated, records.updated)
}

func TestUpdateRecordClearsFollowUpWithEmptyString(t *testing.T) {
	followUp := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	record := &model.MedicalRecord{FollowUpDate: &followUp}
	record.ID = uuid.New()
	s := NewService(&fakeRecordRepo{record: record}, &fakePrescriptionRepo{}, &fakeInventoryRepo{}, testLogger, testMetrics)

	empty := ""
	updated, err := s.UpdateRecord(context.Background(), record.ID, &model.UpdateMedicalRecordRequest{
		FollowUpDate: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.FollowUpDate)

	bad := "15-09-2026"
	_, err = s.UpdateRecord(context.Background(), record.ID, &model.UpdateMedicalRecordRequest{
		FollowUpDate: &bad,
	})
	assert.Error(t, err)
}
