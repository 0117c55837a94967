package service

import (
	"context"
	"strings"
	"sync"

	repository "github.com/prakida/festival-backend/internal/database/postgres"
	"github.com/prakida/festival-backend/internal/entity"
)

// In-memory repositories for service tests.

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendRegistrationConfirmed(ctx context.Context, member entity.Member, reg *entity.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, member.Email)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRegistrationRepo struct {
	registrations []*entity.Registration
	duplicates    []string
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *entity.Registration) error {
	f.registrations = append(f.registrations, reg)
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*entity.Registration, error) {
	for _, r := range f.registrations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, entity.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) GetAll(ctx context.Context) ([]*entity.Registration, error) {
	return f.registrations, nil
}

func (f *fakeRegistrationRepo) GetByMemberEmail(ctx context.Context, email string) ([]*entity.Registration, error) {
	var out []*entity.Registration
	for _, r := range f.registrations {
		for _, m := range r.Members {
			if strings.EqualFold(m.Email, email) {
				row := *r
				row.Role = m.Role
				out = append(out, &row)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) GetByCreator(ctx context.Context, userID string) ([]*entity.Registration, error) {
	var out []*entity.Registration
	for _, r := range f.registrations {
		if r.UserID == userID {
			row := *r
			out = append(out, &row)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) FindDuplicateEmails(ctx context.Context, emails []string, sport, category string) ([]string, error) {
	return f.duplicates, nil
}

func (f *fakeRegistrationRepo) UpdateBookingUID(ctx context.Context, id, bookingUID string) error {
	r, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	r.TiqrBookingUID = bookingUID
	return nil
}

func (f *fakeRegistrationRepo) SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error {
	r, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.TiqrBookingUID != "" {
		return entity.ErrBookingUIDExists
	}
	r.TiqrBookingUID = bookingUID
	return nil
}

func (f *fakeRegistrationRepo) ApplySettlement(ctx context.Context, bookingUID string, update *repository.SettlementUpdate) (string, entity.PaymentStatus, error) {
	for _, r := range f.registrations {
		if r.TiqrBookingUID == bookingUID {
			prev := r.PaymentStatus
			r.PaymentStatus = update.Status
			if update.BookingID != "" {
				r.TiqrBookingID = update.BookingID
			}
			if update.ArtifactURL != "" {
				r.TicketPDFURL = update.ArtifactURL
			}
			if update.Amount > 0 {
				r.PaymentAmount = update.Amount
			}
			r.CreatedViaTiqr = true
			return r.ID, prev, nil
		}
	}
	return "", "", entity.ErrNoCorrelatedRecord
}

func (f *fakeRegistrationRepo) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, amount float64) error {
	r, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	r.PaymentStatus = status
	if amount > 0 {
		r.PaymentAmount = amount
	}
	return nil
}

type fakeTicketRepo struct {
	tickets []*entity.Ticket
}

func (f *fakeTicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	f.tickets = append(f.tickets, t)
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	for _, t := range f.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, entity.ErrTicketNotFound
}

func (f *fakeTicketRepo) GetByUserID(ctx context.Context, userID string) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) GetAll(ctx context.Context) ([]*entity.Ticket, error) {
	return f.tickets, nil
}

func (f *fakeTicketRepo) UpdateBookingUID(ctx context.Context, id, bookingUID string) error {
	t, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.TiqrBookingUID = bookingUID
	return nil
}

func (f *fakeTicketRepo) SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error {
	t, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.TiqrBookingUID != "" {
		return entity.ErrBookingUIDExists
	}
	t.TiqrBookingUID = bookingUID
	return nil
}

func (f *fakeTicketRepo) ApplySettlement(ctx context.Context, bookingUID string, update *repository.SettlementUpdate) (string, entity.PaymentStatus, error) {
	for _, t := range f.tickets {
		if t.TiqrBookingUID == bookingUID {
			prev := t.PaymentStatus
			t.PaymentStatus = update.Status
			if update.BookingID != "" {
				t.TiqrBookingID = update.BookingID
			}
			if update.ArtifactURL != "" {
				t.QRCodeURL = update.ArtifactURL
			}
			return t.ID, prev, nil
		}
	}
	return "", "", entity.ErrNoCorrelatedRecord
}

func (f *fakeTicketRepo) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	t, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.PaymentStatus = status
	return nil
}

type fakeAccommodationRepo struct {
	bookings []*entity.AccommodationBooking
}

func (f *fakeAccommodationRepo) Create(ctx context.Context, b *entity.AccommodationBooking) error {
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeAccommodationRepo) GetByID(ctx context.Context, id string) (*entity.AccommodationBooking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, entity.ErrAccommodationNotFound
}

func (f *fakeAccommodationRepo) GetByUser(ctx context.Context, userID string) ([]*entity.AccommodationBooking, error) {
	var out []*entity.AccommodationBooking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAccommodationRepo) GetPending(ctx context.Context, limit int) ([]*entity.AccommodationBooking, error) {
	var out []*entity.AccommodationBooking
	for _, b := range f.bookings {
		if shouldRefreshStatus(b.PaymentStatus) {
			out = append(out, b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAccommodationRepo) UpdateStatus(ctx context.Context, id, status, paymentURL string) error {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b.PaymentStatus = status
	if paymentURL != "" {
		b.PaymentURL = paymentURL
	}
	return nil
}
