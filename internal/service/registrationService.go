package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repository "github.com/prakida/festival-backend/internal/database/postgres"
	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/identity"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/prakida/festival-backend/pkg/tiqr"
)

type registrationService struct {
	registrationRepo repository.RegistrationRepository
	provider         tiqr.Provider
	dashboard        DashboardService
}

func NewRegistrationService(
	registrationRepo repository.RegistrationRepository,
	provider tiqr.Provider,
	dashboard DashboardService,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		provider:         provider,
		dashboard:        dashboard,
	}
}

// CreateRegistration validates the team, rejects duplicate members for the
// sport/category, persists the registration with status pending, and opens a
// provider payment session correlated via booking uid.
func (s *registrationService) CreateRegistration(ctx context.Context, user auth.Identity, req *CreateRegistrationRequest) (*PaymentSession, error) {
	members := identity.Dedupe(req.Members)

	emails := make([]string, 0, len(members))
	for i, m := range members {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Phone) == "" {
			return nil, fmt.Errorf("%w: member #%d", entity.ErrInvalidMember, i+1)
		}
		emails = append(emails, identity.NormalizeEmail(m.Email))
	}

	duplicates, err := s.registrationRepo.FindDuplicateEmails(ctx, emails, req.Sport, req.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate members: %w", err)
	}
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrDuplicateMembers, strings.Join(duplicates, ", "))
	}

	registration := &entity.Registration{
		ID:            uuid.New().String(),
		UserID:        user.UID,
		TeamName:      req.TeamName,
		Sport:         req.Sport,
		Category:      req.Category,
		TeamUniqueID:  newTeamUniqueID(),
		PaymentStatus: entity.PaymentStatusPending,
		PaymentAmount: req.Amount,
		Members:       members,
	}

	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": registration.ID,
		"team_unique_id":  registration.TeamUniqueID,
		"sport":           registration.Sport,
		"category":        registration.Category,
		"members":         len(members),
	}).Info("Registration created")

	booking, err := s.provider.CreateBooking(ctx, &tiqr.BookingRequest{
		Amount:    req.Amount,
		Reference: registration.TeamUniqueID,
		Customer: map[string]interface{}{
			"uid":   user.UID,
			"email": user.Email,
		},
	})
	if err != nil {
		// The registration stays pending without a correlation id; the
		// self-heal path can attach one later.
		logrus.Errorf("Provider booking failed for registration %s: %v", registration.ID, err)
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	if err := s.registrationRepo.UpdateBookingUID(ctx, registration.ID, booking.BookingUID); err != nil {
		return nil, fmt.Errorf("failed to store booking uid: %w", err)
	}

	if s.dashboard != nil {
		s.dashboard.InvalidateUser(ctx, user.Email)
	}

	return &PaymentSession{
		RecordID:   registration.ID,
		BookingUID: booking.BookingUID,
		PaymentURL: booking.PaymentURL,
		Status:     booking.Status,
	}, nil
}

func (s *registrationService) GetAllRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	return s.registrationRepo.GetAll(ctx)
}

func (s *registrationService) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, amount float64) error {
	if err := s.registrationRepo.UpdatePaymentStatus(ctx, id, status, amount); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"registration_id": id,
		"status":          status,
	}).Info("Payment status overridden")
	return nil
}

func newTeamUniqueID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "PRK-" + id[:8]
}
