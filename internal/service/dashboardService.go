package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	repository "github.com/prakida/festival-backend/internal/database/postgres"
	rediscache "github.com/prakida/festival-backend/internal/database/redis"
	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/identity"
	"github.com/prakida/festival-backend/pkg/auth"
)

type dashboardService struct {
	registrationRepo repository.RegistrationRepository
	ticketRepo       repository.TicketRepository
	cache            *rediscache.DashboardCache
}

func NewDashboardService(
	registrationRepo repository.RegistrationRepository,
	ticketRepo repository.TicketRepository,
	cache *rediscache.DashboardCache,
) DashboardService {
	return &dashboardService{
		registrationRepo: registrationRepo,
		ticketRepo:       ticketRepo,
		cache:            cache,
	}
}

// GetUserRegistrations merges two independently-sourced views of the user's
// teams: rows where their email appears in the member list, and rows they
// created. The creator view is a fallback guarantee that a team's owner
// always sees their own team even when the member list omits them.
func (s *dashboardService) GetUserRegistrations(ctx context.Context, user auth.Identity, refresh bool) ([]*entity.Registration, error) {
	if user.Email == "" {
		return nil, entity.ErrUnauthorized
	}

	cacheKey := identity.NormalizeEmail(user.Email)

	if s.cache != nil && !refresh {
		if cached, err := s.cache.GetRegistrations(ctx, cacheKey); err == nil {
			return cached, nil
		}
	}

	memberRows, err := s.registrationRepo.GetByMemberEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member registrations: %w", err)
	}

	creatorRows, err := s.registrationRepo.GetByCreator(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch creator registrations: %w", err)
	}

	merged := mergeRegistrations(memberRows, creatorRows)

	if s.cache != nil {
		if err := s.cache.SetRegistrations(ctx, cacheKey, merged); err != nil {
			logrus.Warnf("Failed to cache dashboard for %s: %v", cacheKey, err)
		}
	}

	return merged, nil
}

// mergeRegistrations keys both views by team_unique_id. Member rows are
// inserted first and win conflicts; creator rows fill the gaps tagged as
// Captain. Rows without a team_unique_id cannot be deduplicated safely and
// are dropped as not-yet-finalized.
func mergeRegistrations(memberRows, creatorRows []*entity.Registration) []*entity.Registration {
	merged := make([]*entity.Registration, 0, len(memberRows)+len(creatorRows))
	seen := make(map[string]struct{}, len(memberRows)+len(creatorRows))

	for _, reg := range memberRows {
		if reg.TeamUniqueID == "" {
			continue
		}
		if _, ok := seen[reg.TeamUniqueID]; ok {
			continue
		}
		seen[reg.TeamUniqueID] = struct{}{}
		merged = append(merged, reg)
	}

	for _, reg := range creatorRows {
		if reg.TeamUniqueID == "" {
			continue
		}
		if _, ok := seen[reg.TeamUniqueID]; ok {
			continue
		}
		seen[reg.TeamUniqueID] = struct{}{}
		reg.Role = "Captain"
		merged = append(merged, reg)
	}

	return merged
}

func (s *dashboardService) GetUserTickets(ctx context.Context, userID string) ([]*entity.Ticket, error) {
	return s.ticketRepo.GetByUserID(ctx, userID)
}

// InvalidateUser drops the cached dashboard so the next load reflects fresh
// settlement state. Best effort: a miss just means one extra query.
func (s *dashboardService) InvalidateUser(ctx context.Context, email string) {
	if s.cache == nil || email == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, identity.NormalizeEmail(email)); err != nil {
		logrus.Warnf("Failed to invalidate dashboard cache for %s: %v", email, err)
	}
}
