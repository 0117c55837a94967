package repository

import (
	"context"

	"github.com/prakida/festival-backend/internal/entity"
)

// SettlementUpdate is the single conditional write applied to the record
// matching a provider booking uid.
type SettlementUpdate struct {
	Status      entity.PaymentStatus
	BookingID   string
	ArtifactURL string
	Amount      float64
}

type RegistrationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, registration *entity.Registration) error
	GetByID(ctx context.Context, id string) (*entity.Registration, error)
	GetAll(ctx context.Context) ([]*entity.Registration, error)

	// Dashboard views
	GetByMemberEmail(ctx context.Context, email string) ([]*entity.Registration, error)
	GetByCreator(ctx context.Context, userID string) ([]*entity.Registration, error)

	// Duplicate detection
	FindDuplicateEmails(ctx context.Context, emails []string, sport, category string) ([]string, error)

	// Payment correlation. ApplySettlement reports the status the row held
	// before the write, so callers can tell a transition from a redelivery.
	UpdateBookingUID(ctx context.Context, id, bookingUID string) error
	SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error
	ApplySettlement(ctx context.Context, bookingUID string, update *SettlementUpdate) (string, entity.PaymentStatus, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, amount float64) error
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	GetByUserID(ctx context.Context, userID string) ([]*entity.Ticket, error)
	GetAll(ctx context.Context) ([]*entity.Ticket, error)

	UpdateBookingUID(ctx context.Context, id, bookingUID string) error
	SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error
	ApplySettlement(ctx context.Context, bookingUID string, update *SettlementUpdate) (string, entity.PaymentStatus, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error
}

type AccommodationRepository interface {
	Create(ctx context.Context, booking *entity.AccommodationBooking) error
	GetByID(ctx context.Context, id string) (*entity.AccommodationBooking, error)
	GetByUser(ctx context.Context, userID string) ([]*entity.AccommodationBooking, error)
	GetPending(ctx context.Context, limit int) ([]*entity.AccommodationBooking, error)
	UpdateStatus(ctx context.Context, id, status, paymentURL string) error
}
