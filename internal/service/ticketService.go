package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/prakida/festival-backend/internal/database/postgres"
	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/prakida/festival-backend/pkg/tiqr"
)

type ticketService struct {
	ticketRepo repository.TicketRepository
	provider   tiqr.Provider
}

func NewTicketService(ticketRepo repository.TicketRepository, provider tiqr.Provider) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		provider:   provider,
	}
}

// BuyTicket creates a pending entry pass and opens a provider payment session
// for it; settlement arrives later via webhook or the mock path.
func (s *ticketService) BuyTicket(ctx context.Context, user auth.Identity, req *BuyTicketRequest) (*PaymentSession, error) {
	ticket := &entity.Ticket{
		ID:            uuid.New().String(),
		UserID:        user.UID,
		Price:         req.Price,
		PaymentStatus: entity.PaymentStatusPending,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	booking, err := s.provider.CreateBooking(ctx, &tiqr.BookingRequest{
		Amount:    req.Price,
		Reference: ticket.ID,
		Customer: map[string]interface{}{
			"uid":   user.UID,
			"email": user.Email,
		},
	})
	if err != nil {
		logrus.Errorf("Provider booking failed for ticket %s: %v", ticket.ID, err)
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	if err := s.ticketRepo.UpdateBookingUID(ctx, ticket.ID, booking.BookingUID); err != nil {
		return nil, fmt.Errorf("failed to store booking uid: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"booking_uid": booking.BookingUID,
	}).Info("Ticket created")

	return &PaymentSession{
		RecordID:   ticket.ID,
		BookingUID: booking.BookingUID,
		PaymentURL: booking.PaymentURL,
		Status:     booking.Status,
	}, nil
}

func (s *ticketService) GetAllTickets(ctx context.Context) ([]*entity.Ticket, error) {
	return s.ticketRepo.GetAll(ctx)
}

func (s *ticketService) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	return s.ticketRepo.UpdatePaymentStatus(ctx, id, status)
}
