package service

import (
	"context"
	"testing"
	"time"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/tiqr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettlementFixture(regs []*entity.Registration, tickets []*entity.Ticket) (SettlementService, *fakeRegistrationRepo, *fakeTicketRepo) {
	regRepo := &fakeRegistrationRepo{registrations: regs}
	ticketRepo := &fakeTicketRepo{tickets: tickets}
	svc := NewSettlementService(regRepo, ticketRepo, nil, nil, tiqr.ModeMock)
	return svc, regRepo, ticketRepo
}

func TestApplySettlementOutcomeMapping(t *testing.T) {
	tests := []struct {
		name           string
		inboundStatus  string
		expectedStatus entity.PaymentStatus
	}{
		{
			name:           "confirmed stays confirmed",
			inboundStatus:  "confirmed",
			expectedStatus: entity.PaymentStatusConfirmed,
		},
		{
			name:           "paid maps to confirmed",
			inboundStatus:  "paid",
			expectedStatus: entity.PaymentStatusConfirmed,
		},
		{
			name:           "cancelled maps to failed",
			inboundStatus:  "cancelled",
			expectedStatus: entity.PaymentStatusFailed,
		},
		{
			name:           "anything else maps to failed",
			inboundStatus:  "expired",
			expectedStatus: entity.PaymentStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, regRepo, _ := newSettlementFixture([]*entity.Registration{
				{ID: "reg-1", TiqrBookingUID: "uid-1", PaymentStatus: entity.PaymentStatusPending},
			}, nil)

			result, err := svc.Apply(context.Background(), &entity.SettlementEvent{
				BookingUID: "uid-1",
				Status:     tt.inboundStatus,
			})

			require.NoError(t, err)
			assert.Equal(t, entity.RecordKindRegistration, result.Kind)
			assert.Equal(t, "reg-1", result.ID)
			assert.Equal(t, tt.expectedStatus, regRepo.registrations[0].PaymentStatus)
		})
	}
}

func TestApplySettlementIdempotence(t *testing.T) {
	svc, regRepo, ticketRepo := newSettlementFixture([]*entity.Registration{
		{ID: "reg-1", TiqrBookingUID: "X", PaymentStatus: entity.PaymentStatusPending},
	}, nil)

	event := &entity.SettlementEvent{
		BookingUID:  "X",
		Status:      "confirmed",
		BookingID:   "bk-77",
		ArtifactURL: "https://cdn.tiqr.events/ticket.pdf",
	}

	first, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)

	second, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)

	// Redelivery lands on the same record and leaves the same state.
	assert.Equal(t, first, second)
	assert.Len(t, regRepo.registrations, 1)
	assert.Empty(t, ticketRepo.tickets)
	assert.Equal(t, entity.PaymentStatusConfirmed, regRepo.registrations[0].PaymentStatus)
	assert.Equal(t, "bk-77", regRepo.registrations[0].TiqrBookingID)
	assert.Equal(t, "https://cdn.tiqr.events/ticket.pdf", regRepo.registrations[0].TicketPDFURL)
}

func TestApplySettlementSendsConfirmationEmailOnce(t *testing.T) {
	regRepo := &fakeRegistrationRepo{registrations: []*entity.Registration{
		{
			ID:             "reg-1",
			TiqrBookingUID: "X",
			PaymentStatus:  entity.PaymentStatusPending,
			Members: []entity.Member{
				{Name: "Alex Roy", Email: "alex@x.com", Phone: "9876543210"},
				{Name: "Priya Das", Email: "priya@x.com", Phone: "1112223333"},
			},
		},
	}}
	notifier := &fakeNotifier{}
	svc := NewSettlementService(regRepo, &fakeTicketRepo{}, nil, notifier, tiqr.ModeMock)

	event := &entity.SettlementEvent{BookingUID: "X", Status: "confirmed"}

	_, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return notifier.sentCount() == 2
	}, time.Second, 10*time.Millisecond, "both members should be notified")

	// Redelivery rewrites the already-confirmed row but must not notify again.
	_, err = svc.Apply(context.Background(), event)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, notifier.sentCount())
}

func TestApplySettlementFailedOutcomeSendsNoEmail(t *testing.T) {
	regRepo := &fakeRegistrationRepo{registrations: []*entity.Registration{
		{
			ID:             "reg-1",
			TiqrBookingUID: "X",
			PaymentStatus:  entity.PaymentStatusPending,
			Members:        []entity.Member{{Name: "Alex Roy", Email: "alex@x.com"}},
		},
	}}
	notifier := &fakeNotifier{}
	svc := NewSettlementService(regRepo, &fakeTicketRepo{}, nil, notifier, tiqr.ModeMock)

	_, err := svc.Apply(context.Background(), &entity.SettlementEvent{BookingUID: "X", Status: "cancelled"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, notifier.sentCount())
}

func TestApplySettlementFallsBackToTickets(t *testing.T) {
	svc, regRepo, ticketRepo := newSettlementFixture(
		[]*entity.Registration{{ID: "reg-1", TiqrBookingUID: "other"}},
		[]*entity.Ticket{{ID: "tic-1", TiqrBookingUID: "uid-9", PaymentStatus: entity.PaymentStatusPending}},
	)

	result, err := svc.Apply(context.Background(), &entity.SettlementEvent{
		BookingUID:  "uid-9",
		Status:      "paid",
		ArtifactURL: "https://cdn.tiqr.events/qr.png",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RecordKindTicket, result.Kind)
	assert.Equal(t, "tic-1", result.ID)
	assert.Equal(t, entity.PaymentStatusConfirmed, ticketRepo.tickets[0].PaymentStatus)
	assert.Equal(t, "https://cdn.tiqr.events/qr.png", ticketRepo.tickets[0].QRCodeURL)

	// The registration namespace stays untouched.
	assert.Equal(t, entity.PaymentStatus(""), regRepo.registrations[0].PaymentStatus)
}

func TestApplySettlementNotFound(t *testing.T) {
	svc, _, _ := newSettlementFixture(nil, nil)

	result, err := svc.Apply(context.Background(), &entity.SettlementEvent{
		BookingUID: "unknown-id",
		Status:     "confirmed",
	})

	assert.ErrorIs(t, err, entity.ErrNoCorrelatedRecord)
	assert.Nil(t, result)
}

func TestApplySettlementMissingUID(t *testing.T) {
	svc, _, _ := newSettlementFixture(nil, nil)

	_, err := svc.Apply(context.Background(), &entity.SettlementEvent{Status: "confirmed"})

	assert.ErrorIs(t, err, entity.ErrMissingBookingUID)
}

func TestVerifyMockPayment(t *testing.T) {
	svc, regRepo, _ := newSettlementFixture([]*entity.Registration{
		{ID: "reg-1", TiqrBookingUID: "mock_uid_1", PaymentStatus: entity.PaymentStatusPending},
	}, nil)

	result, err := svc.VerifyMockPayment(context.Background(), "mock_uid_1")

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusConfirmed, result.Status)
	assert.Equal(t, entity.PaymentStatusConfirmed, regRepo.registrations[0].PaymentStatus)
	assert.Equal(t, mockTicketPDFURL, regRepo.registrations[0].TicketPDFURL)
	assert.Equal(t, float64(mockAmount), regRepo.registrations[0].PaymentAmount)
}

func TestVerifyMockPaymentDisabledInLiveMode(t *testing.T) {
	regRepo := &fakeRegistrationRepo{}
	svc := NewSettlementService(regRepo, &fakeTicketRepo{}, nil, nil, tiqr.ModeLive)

	_, err := svc.VerifyMockPayment(context.Background(), "uid")

	assert.ErrorIs(t, err, entity.ErrMockModeDisabled)
}

func TestHealBookingUID(t *testing.T) {
	t.Run("assigns a fresh uid when absent", func(t *testing.T) {
		svc, regRepo, _ := newSettlementFixture([]*entity.Registration{
			{ID: "reg-1", PaymentStatus: entity.PaymentStatusPending},
		}, nil)

		healed, err := svc.HealBookingUID(context.Background(), entity.RecordKindRegistration, "reg-1")

		require.NoError(t, err)
		assert.NotEmpty(t, healed)
		assert.Equal(t, healed, regRepo.registrations[0].TiqrBookingUID)

		// The healed uid is discoverable by a subsequent settlement lookup.
		result, err := svc.Apply(context.Background(), &entity.SettlementEvent{
			BookingUID: healed,
			Status:     "confirmed",
		})
		require.NoError(t, err)
		assert.Equal(t, "reg-1", result.ID)
	})

	t.Run("never overwrites a provider-issued uid", func(t *testing.T) {
		svc, regRepo, _ := newSettlementFixture([]*entity.Registration{
			{ID: "reg-1", TiqrBookingUID: "prov-123"},
		}, nil)

		_, err := svc.HealBookingUID(context.Background(), entity.RecordKindRegistration, "reg-1")

		assert.ErrorIs(t, err, entity.ErrBookingUIDExists)
		assert.Equal(t, "prov-123", regRepo.registrations[0].TiqrBookingUID)
	})

	t.Run("unknown record", func(t *testing.T) {
		svc, _, _ := newSettlementFixture(nil, nil)

		_, err := svc.HealBookingUID(context.Background(), entity.RecordKindTicket, "missing")

		assert.ErrorIs(t, err, entity.ErrTicketNotFound)
	})
}
