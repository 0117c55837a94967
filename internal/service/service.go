package service

import (
	"context"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/auth"
)

// CreateRegistrationRequest carries a new team registration submission.
type CreateRegistrationRequest struct {
	TeamName string          `json:"team_name" binding:"required,min=2,max=255"`
	Sport    string          `json:"sport" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Amount   float64         `json:"amount" binding:"required,gt=0"`
	Members  []entity.Member `json:"members" binding:"required,min=1"`
}

// PaymentSession is returned by every booking write path: the created record
// plus the provider url the client must redirect to.
type PaymentSession struct {
	RecordID   string `json:"record_id"`
	BookingUID string `json:"booking_uid"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

type BuyTicketRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

type BookAccommodationRequest struct {
	College     string          `json:"college" binding:"required"`
	TeamName    string          `json:"team_name"`
	Preferences string          `json:"preferences"`
	Members     []entity.Member `json:"members" binding:"required,min=1"`
}

// RosterBuckets is the mutually-exclusive classification of a member roster
// against accommodation status. Failed/cancelled members appear in no bucket:
// a failed attempt is retried through a dedicated path, never silently
// re-offered.
type RosterBuckets struct {
	Booked    []entity.Member `json:"booked"`
	Pending   []entity.Member `json:"pending"`
	Remaining []entity.Member `json:"remaining"`
}

type RegistrationService interface {
	CreateRegistration(ctx context.Context, user auth.Identity, req *CreateRegistrationRequest) (*PaymentSession, error)
	GetAllRegistrations(ctx context.Context) ([]*entity.Registration, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, amount float64) error
}

type TicketService interface {
	BuyTicket(ctx context.Context, user auth.Identity, req *BuyTicketRequest) (*PaymentSession, error)
	GetAllTickets(ctx context.Context) ([]*entity.Ticket, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error
}

type DashboardService interface {
	// GetUserRegistrations merges the member-view and creator-view team
	// lists into one deduplicated dashboard list.
	GetUserRegistrations(ctx context.Context, user auth.Identity, refresh bool) ([]*entity.Registration, error)
	GetUserTickets(ctx context.Context, userID string) ([]*entity.Ticket, error)
	InvalidateUser(ctx context.Context, email string)
}

type AccommodationService interface {
	Book(ctx context.Context, user auth.Identity, req *BookAccommodationRequest) (*PaymentSession, error)
	GetBookings(ctx context.Context, user auth.Identity, refresh bool) ([]*entity.AccommodationBooking, error)
	// Roster classifies the members of the user's event registrations into
	// booked/pending/remaining accommodation buckets.
	Roster(ctx context.Context, user auth.Identity) (*RosterBuckets, error)
	RefreshPending(ctx context.Context, batchSize int) (int, error)
}

// ConfirmationSender delivers the payment-confirmed notification to one team
// member. Satisfied by *mailer.Mailer.
type ConfirmationSender interface {
	SendRegistrationConfirmed(ctx context.Context, member entity.Member, reg *entity.Registration) error
}

type SettlementService interface {
	Apply(ctx context.Context, event *entity.SettlementEvent) (*entity.SettlementResult, error)
	VerifyMockPayment(ctx context.Context, bookingUID string) (*entity.SettlementResult, error)
	HealBookingUID(ctx context.Context, kind entity.RecordKind, recordID string) (string, error)
}
