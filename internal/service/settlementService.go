package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/prakida/festival-backend/internal/database/postgres"
	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/tiqr"
)

const (
	mockTicketPDFURL = "https://example.com/mock-ticket.pdf"
	mockQRCodeURL    = "https://example.com/mock-qr-code.png"
	mockAmount       = 100
)

type settlementService struct {
	registrationRepo repository.RegistrationRepository
	ticketRepo       repository.TicketRepository
	dashboard        DashboardService
	notifier         ConfirmationSender
	providerMode     tiqr.Mode
}

func NewSettlementService(
	registrationRepo repository.RegistrationRepository,
	ticketRepo repository.TicketRepository,
	dashboard DashboardService,
	notifier ConfirmationSender,
	providerMode tiqr.Mode,
) SettlementService {
	return &settlementService{
		registrationRepo: registrationRepo,
		ticketRepo:       ticketRepo,
		dashboard:        dashboard,
		notifier:         notifier,
		providerMode:     providerMode,
	}
}

// Apply locates exactly one record correlated to the event's booking uid,
// checking registrations first and tickets second, and writes the outcome onto
// it. The write is an equality-filtered update, so provider redelivery of the
// same event is idempotent.
func (s *settlementService) Apply(ctx context.Context, event *entity.SettlementEvent) (*entity.SettlementResult, error) {
	if strings.TrimSpace(event.BookingUID) == "" {
		return nil, entity.ErrMissingBookingUID
	}

	outcome := event.Outcome()
	update := &repository.SettlementUpdate{
		Status:      outcome,
		BookingID:   event.BookingID,
		ArtifactURL: event.ArtifactURL,
	}

	regID, prev, err := s.registrationRepo.ApplySettlement(ctx, event.BookingUID, update)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"booking_uid":     event.BookingUID,
			"registration_id": regID,
			"status":          outcome,
		}).Info("Settlement applied to registration")

		s.afterRegistrationSettlement(ctx, regID, outcome, prev)
		return &entity.SettlementResult{
			Kind:   entity.RecordKindRegistration,
			ID:     regID,
			Status: outcome,
		}, nil
	}
	if !errors.Is(err, entity.ErrNoCorrelatedRecord) {
		return nil, err
	}

	ticketID, _, err := s.ticketRepo.ApplySettlement(ctx, event.BookingUID, update)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"booking_uid": event.BookingUID,
			"ticket_id":   ticketID,
			"status":      outcome,
		}).Info("Settlement applied to ticket")

		return &entity.SettlementResult{
			Kind:   entity.RecordKindTicket,
			ID:     ticketID,
			Status: outcome,
		}, nil
	}
	if !errors.Is(err, entity.ErrNoCorrelatedRecord) {
		return nil, err
	}

	// Expected outcome for stale or foreign events, not a process error.
	logrus.Warnf("No registration or ticket found for booking uid %s", event.BookingUID)
	return nil, entity.ErrNoCorrelatedRecord
}

// afterRegistrationSettlement refreshes derived state once a registration
// settles: cache invalidation and, on confirmation, member emails. Emails fire
// only on the pending-to-confirmed transition, so a redelivered event (which
// rewrites an already-confirmed row) never notifies twice.
func (s *settlementService) afterRegistrationSettlement(ctx context.Context, registrationID string, outcome, prev entity.PaymentStatus) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		logrus.Warnf("Failed to load settled registration %s: %v", registrationID, err)
		return
	}

	if s.dashboard != nil {
		for _, m := range reg.Members {
			s.dashboard.InvalidateUser(ctx, m.Email)
		}
	}

	if s.notifier != nil &&
		outcome == entity.PaymentStatusConfirmed &&
		prev != entity.PaymentStatusConfirmed {
		go s.sendConfirmationEmails(reg)
	}
}

func (s *settlementService) sendConfirmationEmails(reg *entity.Registration) {
	for _, m := range reg.Members {
		if m.Email == "" {
			continue
		}
		if err := s.notifier.SendRegistrationConfirmed(context.Background(), m, reg); err != nil {
			logrus.Errorf("Failed to send confirmation email to %s: %v", m.Email, err)
		}
	}
}

// VerifyMockPayment runs the settlement algorithm for the dev-mode redirect
// (?mock_payment_success=true&uid=…) with a synthetic confirmed outcome.
func (s *settlementService) VerifyMockPayment(ctx context.Context, bookingUID string) (*entity.SettlementResult, error) {
	if s.providerMode != tiqr.ModeMock {
		return nil, entity.ErrMockModeDisabled
	}
	if strings.TrimSpace(bookingUID) == "" {
		return nil, entity.ErrMissingBookingUID
	}

	update := &repository.SettlementUpdate{
		Status:      entity.PaymentStatusConfirmed,
		ArtifactURL: mockTicketPDFURL,
		Amount:      mockAmount,
	}

	regID, prev, err := s.registrationRepo.ApplySettlement(ctx, bookingUID, update)
	if err == nil {
		s.afterRegistrationSettlement(ctx, regID, entity.PaymentStatusConfirmed, prev)
		return &entity.SettlementResult{
			Kind:   entity.RecordKindRegistration,
			ID:     regID,
			Status: entity.PaymentStatusConfirmed,
		}, nil
	}
	if !errors.Is(err, entity.ErrNoCorrelatedRecord) {
		return nil, err
	}

	ticketID, _, err := s.ticketRepo.ApplySettlement(ctx, bookingUID, &repository.SettlementUpdate{
		Status:      entity.PaymentStatusConfirmed,
		ArtifactURL: mockQRCodeURL,
	})
	if err == nil {
		return &entity.SettlementResult{
			Kind:   entity.RecordKindTicket,
			ID:     ticketID,
			Status: entity.PaymentStatusConfirmed,
		}, nil
	}
	if !errors.Is(err, entity.ErrNoCorrelatedRecord) {
		return nil, err
	}

	return nil, entity.ErrNoCorrelatedRecord
}

// HealBookingUID assigns a fresh synthetic correlation id to a record that
// never received one, so a stalled booking can still be settled. The guard
// lives in the repository update: a present uid is never overwritten.
func (s *settlementService) HealBookingUID(ctx context.Context, kind entity.RecordKind, recordID string) (string, error) {
	if recordID == "" {
		return "", entity.ErrInvalidInput
	}

	healed := "mock_uid_healed_" + uuid.New().String()

	var err error
	switch kind {
	case entity.RecordKindRegistration:
		err = s.registrationRepo.SetBookingUIDIfAbsent(ctx, recordID, healed)
	case entity.RecordKindTicket:
		err = s.ticketRepo.SetBookingUIDIfAbsent(ctx, recordID, healed)
	default:
		return "", fmt.Errorf("%w: unknown record kind %q", entity.ErrInvalidInput, kind)
	}
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"kind":        kind,
		"record_id":   recordID,
		"booking_uid": healed,
	}).Info("Healed missing booking uid")

	return healed, nil
}
