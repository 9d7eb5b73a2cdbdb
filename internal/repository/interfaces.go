package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// BookingRepository owns the booking lifecycle. The transition methods
	// re-read the persisted row under a lock inside one transaction, so two
	// concurrent requests cannot both take the "first transition" branch.
	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		SlotTaken(ctx context.Context, date time.Time, timeSlot string, excludeID *uuid.UUID) (bool, error)

		// Confirm moves Pending -> Confirmed and upserts the legacy
		// appointment row by its natural key.
		Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// StartConsultation moves consultation Not Yet -> Ongoing.
		StartConsultation(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		// CompleteConsultation provisions user/patient/medical record/billing
		// in one transaction and forces the booking to Completed.
		CompleteConsultation(ctx context.Context, id uuid.UUID, params *model.ProvisioningParams) (*model.ProvisioningResult, error)
		Cancel(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	}

	AppointmentRepository interface {
		List(ctx context.Context, startDate, endDate time.Time) ([]*model.Appointment, error)
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUser(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	MedicalRecordRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
	}

	// BillingRepository keeps the derived payment fields authoritative. The
	// mutating methods reconcile inside the same transaction as the write.
	BillingRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Billing, error)
		GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Billing, error)
		List(ctx context.Context, unpaidOnly bool) ([]*model.Billing, error)
		ListPayments(ctx context.Context, billingID uuid.UUID) ([]*model.Payment, error)
		RecordPayment(ctx context.Context, payment *model.Payment) (*model.Billing, error)
		UpdateFees(ctx context.Context, id uuid.UUID, fees *model.UpdateFeesRequest) (*model.Billing, error)
	}

	// InventoryRepository pairs every quantity mutation with an audit row and
	// re-derives the stock status in the same transaction.
	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
		Update(ctx context.Context, item *model.InventoryItem) error
		List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItem, error)
		Deduct(ctx context.Context, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error)
		Return(ctx context.Context, itemID uuid.UUID, qty int, actor *uuid.UUID, notes string) (*model.InventoryItem, error)
		ListTransactions(ctx context.Context, itemID uuid.UUID) ([]*model.StockTransaction, error)
	}

	PrescriptionRepository interface {
		// Create inserts the prescription, deducts inventory-backed stock and
		// rolls the medicine fee up onto the relevant billing, all in one
		// transaction.
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*model.Prescription, error)
		// Delete removes the prescription and reverses the fee rollup. Stock
		// is not returned; that is an explicit inventory adjustment.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	POSRepository interface {
		CreateSale(ctx context.Context, sale *model.POSSale) error
		GetSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
		ListSales(ctx context.Context, filters *model.SaleFilters) ([]*model.POSSale, error)
		ListItems(ctx context.Context, saleID uuid.UUID) ([]*model.POSSaleItem, error)

		// AddItem inserts a line item. priceProvided distinguishes an explicit
		// unit price (zero included, for free items) from "snapshot the
		// current inventory price".
		AddItem(ctx context.Context, item *model.POSSaleItem, priceProvided bool) (*model.POSSale, error)
		UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*model.POSSale, error)
		RemoveItem(ctx context.Context, itemID uuid.UUID) (*model.POSSale, error)

		CompleteSale(ctx context.Context, id uuid.UUID) (*model.POSSale, error)
		// ReturnSale moves a sale to Cancelled or Refunded, returning stock
		// for every line item when the sale had been completed.
		ReturnSale(ctx context.Context, id uuid.UUID, status model.SaleStatus) (*model.POSSale, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, svc *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, svc *model.Service) error
		List(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	}

	// TokenRepository manages the password reset tokens stored by the
	// provisioning pipeline.
	TokenRepository interface {
		// ResetPassword consumes a valid unused token: the owning user gets
		// the new password hash and becomes active, the token is marked used.
		ResetPassword(ctx context.Context, token string, newPasswordHash string) (*model.User, error)
	}

	OutboxRepository interface {
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
