package service

import (
	"context"
	"testing"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/prakida/festival-backend/pkg/tiqr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyTicket(t *testing.T) {
	repo := &fakeTicketRepo{}
	svc := NewTicketService(repo, tiqr.NewMockClient("http://localhost:8080"))

	session, err := svc.BuyTicket(context.Background(), auth.Identity{UID: "u1", Email: "alex@x.com"}, &BuyTicketRequest{Price: 250})

	require.NoError(t, err)
	require.Len(t, repo.tickets, 1)

	ticket := repo.tickets[0]
	assert.Equal(t, "u1", ticket.UserID)
	assert.Equal(t, float64(250), ticket.Price)
	assert.Equal(t, entity.PaymentStatusPending, ticket.PaymentStatus)
	assert.Equal(t, session.BookingUID, ticket.TiqrBookingUID)
	assert.Contains(t, session.PaymentURL, "mock_payment_success=true")
}

func TestBuyTicketProviderFailureLeavesHealableRecord(t *testing.T) {
	repo := &fakeTicketRepo{}
	svc := NewTicketService(repo, &failingProvider{})

	_, err := svc.BuyTicket(context.Background(), auth.Identity{UID: "u1"}, &BuyTicketRequest{Price: 250})

	require.Error(t, err)
	require.Len(t, repo.tickets, 1)
	assert.Equal(t, entity.PaymentStatusPending, repo.tickets[0].PaymentStatus)
	assert.Empty(t, repo.tickets[0].TiqrBookingUID)
}

func TestUpdateTicketPaymentStatus(t *testing.T) {
	repo := &fakeTicketRepo{tickets: []*entity.Ticket{
		{ID: "tic-1", PaymentStatus: entity.PaymentStatusPending},
	}}
	svc := NewTicketService(repo, tiqr.NewMockClient("http://localhost:8080"))

	err := svc.UpdatePaymentStatus(context.Background(), "tic-1", entity.PaymentStatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusConfirmed, repo.tickets[0].PaymentStatus)

	err = svc.UpdatePaymentStatus(context.Background(), "missing", entity.PaymentStatusFailed)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)
}
