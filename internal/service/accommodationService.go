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

type accommodationService struct {
	accommodationRepo repository.AccommodationRepository
	registrationRepo  repository.RegistrationRepository
	provider          tiqr.Provider
}

func NewAccommodationService(
	accommodationRepo repository.AccommodationRepository,
	registrationRepo repository.RegistrationRepository,
	provider tiqr.Provider,
) AccommodationService {
	return &accommodationService{
		accommodationRepo: accommodationRepo,
		registrationRepo:  registrationRepo,
		provider:          provider,
	}
}

// Book validates and normalizes the member list, persists the booking and
// opens a provider payment session. Accommodation status is pulled from the
// provider afterwards rather than pushed by webhook.
func (s *accommodationService) Book(ctx context.Context, user auth.Identity, req *BookAccommodationRequest) (*PaymentSession, error) {
	members := make([]entity.Member, 0, len(req.Members))
	for i, m := range req.Members {
		member := entity.Member{
			Name:   strings.TrimSpace(m.Name),
			Email:  strings.TrimSpace(m.Email),
			Phone:  strings.TrimSpace(m.Phone),
			Gender: entity.NormalizeGender(m.Gender),
		}
		if member.Name == "" || member.Email == "" || member.Phone == "" ||
			(member.Gender != "M" && member.Gender != "F") {
			return nil, fmt.Errorf("%w: member #%d must have name, email, phone, and gender (M/F)",
				entity.ErrInvalidMember, i+1)
		}
		members = append(members, member)
	}
	members = identity.Dedupe(members)

	teamName := req.TeamName
	if teamName == "" {
		teamName = autoTeamName(user)
	}

	booking := &entity.AccommodationBooking{
		ID:            uuid.New().String(),
		UserID:        user.UID,
		College:       req.College,
		TeamName:      teamName,
		Preferences:   req.Preferences,
		PaymentStatus: string(entity.PaymentStatusPending),
		Members:       members,
	}

	session, err := s.provider.CreateBooking(ctx, &tiqr.BookingRequest{
		Amount:    float64(len(members)),
		Reference: booking.ID,
		Customer: map[string]interface{}{
			"uid":   user.UID,
			"email": user.Email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	booking.ProviderOrderID = session.BookingUID
	booking.PaymentURL = session.PaymentURL

	if err := s.accommodationRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create accommodation booking: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"members":    len(members),
		"college":    booking.College,
	}).Info("Accommodation booking created")

	return &PaymentSession{
		RecordID:   booking.ID,
		BookingUID: session.BookingUID,
		PaymentURL: session.PaymentURL,
		Status:     session.Status,
	}, nil
}

// autoTeamName derives a stable team name from the session identity, matching
// what the registration form pre-fills.
func autoTeamName(user auth.Identity) string {
	seed := user.UID
	if seed == "" {
		seed = user.Email
	}
	var b strings.Builder
	for _, r := range seed {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ToUpper(b.String())
	if len(cleaned) > 8 {
		cleaned = cleaned[:8]
	}
	if cleaned == "" {
		cleaned = strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	}
	return "TEAM-" + cleaned
}

func (s *accommodationService) GetBookings(ctx context.Context, user auth.Identity, refresh bool) ([]*entity.AccommodationBooking, error) {
	bookings, err := s.accommodationRepo.GetByUser(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accommodation bookings: %w", err)
	}

	if !refresh {
		return bookings, nil
	}

	for _, b := range bookings {
		if !shouldRefreshStatus(b.PaymentStatus) {
			continue
		}
		s.refreshBooking(ctx, b)
	}
	return bookings, nil
}

// shouldRefreshStatus limits provider pulls to bookings that can still move:
// unset or pending ones.
func shouldRefreshStatus(status string) bool {
	s := strings.ToLower(status)
	return s == "" || strings.Contains(s, "pending")
}

// refreshBooking pulls the provider order and persists any status change.
// Failures leave the stored state untouched.
func (s *accommodationService) refreshBooking(ctx context.Context, b *entity.AccommodationBooking) {
	if b.ProviderOrderID == "" {
		return
	}

	order, err := s.provider.GetOrder(ctx, b.ProviderOrderID)
	if err != nil {
		logrus.Warnf("Failed to refresh accommodation order %s: %v", b.ProviderOrderID, err)
		return
	}
	if order.Status == "" || order.Status == b.PaymentStatus {
		return
	}

	if err := s.accommodationRepo.UpdateStatus(ctx, b.ID, order.Status, order.PaymentURL); err != nil {
		logrus.Errorf("Failed to persist refreshed status for booking %s: %v", b.ID, err)
		return
	}
	b.PaymentStatus = order.Status
	if order.PaymentURL != "" {
		b.PaymentURL = order.PaymentURL
	}
}

// StatusByIdentity reconciles possibly-conflicting status records: for every
// member referenced by any booking, the highest-ranked status wins.
func StatusByIdentity(bookings []*entity.AccommodationBooking) map[string]string {
	statuses := make(map[string]string)

	for _, booking := range bookings {
		rank := entity.StatusRank(booking.PaymentStatus)
		label := booking.PaymentStatus
		if label == "" {
			label = "unknown"
		}

		for _, m := range booking.Members {
			key := identity.Key(m)
			if prev, ok := statuses[key]; !ok || entity.StatusRank(prev) < rank {
				statuses[key] = label
			}
		}
	}

	return statuses
}

// ClassifyRoster puts every member into at most one bucket: booked
// (confirmed), pending, or remaining (no status record). Failed/cancelled
// members land in none of them and stay out of the booking flow.
func ClassifyRoster(roster []entity.Member, statuses map[string]string) *RosterBuckets {
	buckets := &RosterBuckets{
		Booked:    []entity.Member{},
		Pending:   []entity.Member{},
		Remaining: []entity.Member{},
	}

	for _, m := range roster {
		status, ok := statuses[identity.Key(m)]
		if !ok || status == "" {
			buckets.Remaining = append(buckets.Remaining, m)
			continue
		}

		lowered := strings.ToLower(status)
		switch {
		case lowered == "confirmed":
			buckets.Booked = append(buckets.Booked, m)
		case strings.Contains(lowered, "pending"):
			buckets.Pending = append(buckets.Pending, m)
		}
	}

	return buckets
}

// Roster gathers the members of all the user's event registrations,
// deduplicates them, and classifies them against accommodation status.
func (s *accommodationService) Roster(ctx context.Context, user auth.Identity) (*RosterBuckets, error) {
	memberRows, err := s.registrationRepo.GetByMemberEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member registrations: %w", err)
	}
	creatorRows, err := s.registrationRepo.GetByCreator(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch creator registrations: %w", err)
	}

	var roster []entity.Member
	for _, reg := range mergeRegistrations(memberRows, creatorRows) {
		if len(reg.Members) == 0 {
			full, err := s.registrationRepo.GetByID(ctx, reg.ID)
			if err != nil {
				continue
			}
			reg = full
		}
		roster = append(roster, reg.Members...)
	}
	roster = identity.Dedupe(roster)

	bookings, err := s.accommodationRepo.GetByUser(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accommodation bookings: %w", err)
	}

	return ClassifyRoster(roster, StatusByIdentity(bookings)), nil
}

// RefreshPending is the worker entry point: pull provider status for bookings
// that are still unsettled. Returns how many bookings changed state.
func (s *accommodationService) RefreshPending(ctx context.Context, batchSize int) (int, error) {
	pending, err := s.accommodationRepo.GetPending(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending bookings: %w", err)
	}

	updated := 0
	for _, b := range pending {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		before := b.PaymentStatus
		s.refreshBooking(ctx, b)
		if b.PaymentStatus != before {
			updated++
		}
	}

	return updated, nil
}
