package service

import (
	"context"
	"testing"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRegistrations(t *testing.T) {
	tests := []struct {
		name        string
		memberRows  []*entity.Registration
		creatorRows []*entity.Registration
		expectedIDs []string
	}{
		{
			name: "member view wins over creator view for the same team",
			memberRows: []*entity.Registration{
				{ID: "m1", TeamUniqueID: "T1", Role: "Player"},
			},
			creatorRows: []*entity.Registration{
				{ID: "c1", TeamUniqueID: "T1"},
			},
			expectedIDs: []string{"m1"},
		},
		{
			name: "creator-only teams appended after member teams",
			memberRows: []*entity.Registration{
				{ID: "m1", TeamUniqueID: "T1", Role: "Player"},
			},
			creatorRows: []*entity.Registration{
				{ID: "c1", TeamUniqueID: "T2"},
			},
			expectedIDs: []string{"m1", "c1"},
		},
		{
			name: "rows without team unique id are dropped",
			memberRows: []*entity.Registration{
				{ID: "m1", TeamUniqueID: ""},
				{ID: "m2", TeamUniqueID: "T1"},
			},
			creatorRows: []*entity.Registration{
				{ID: "c1", TeamUniqueID: ""},
			},
			expectedIDs: []string{"m2"},
		},
		{
			name:        "both views empty",
			memberRows:  nil,
			creatorRows: nil,
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeRegistrations(tt.memberRows, tt.creatorRows)

			ids := make([]string, 0, len(merged))
			for _, r := range merged {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestMergeRegistrationsKeepsMemberRole(t *testing.T) {
	memberRows := []*entity.Registration{
		{ID: "m1", TeamUniqueID: "T1", Role: "Goalkeeper"},
	}
	creatorRows := []*entity.Registration{
		{ID: "c1", TeamUniqueID: "T1"},
		{ID: "c2", TeamUniqueID: "T2"},
	}

	merged := mergeRegistrations(memberRows, creatorRows)

	require.Len(t, merged, 2)
	assert.Equal(t, "Goalkeeper", merged[0].Role)
	assert.Equal(t, "Captain", merged[1].Role)
}

func TestGetUserRegistrations(t *testing.T) {
	regRepo := &fakeRegistrationRepo{
		registrations: []*entity.Registration{
			{
				ID:           "reg-1",
				UserID:       "creator-uid",
				TeamUniqueID: "T1",
				Members: []entity.Member{
					{Name: "Alex", Email: "alex@x.com", Role: "Player"},
				},
			},
			{
				ID:           "reg-2",
				UserID:       "someone-else",
				TeamUniqueID: "T2",
				Members: []entity.Member{
					{Name: "Alex", Email: "ALEX@X.COM", Role: "Striker"},
				},
			},
			{
				ID:           "reg-3",
				UserID:       "creator-uid",
				TeamUniqueID: "T3",
			},
		},
	}

	svc := NewDashboardService(regRepo, &fakeTicketRepo{}, nil)

	merged, err := svc.GetUserRegistrations(context.Background(), auth.Identity{
		UID:   "creator-uid",
		Email: "alex@x.com",
	}, false)

	require.NoError(t, err)
	require.Len(t, merged, 3)

	// Member rows come first with their stored roles; the creator-only team
	// trails as Captain.
	assert.Equal(t, "reg-1", merged[0].ID)
	assert.Equal(t, "Player", merged[0].Role)
	assert.Equal(t, "reg-2", merged[1].ID)
	assert.Equal(t, "Striker", merged[1].Role)
	assert.Equal(t, "reg-3", merged[2].ID)
	assert.Equal(t, "Captain", merged[2].Role)
}

func TestGetUserRegistrationsRequiresEmail(t *testing.T) {
	svc := NewDashboardService(&fakeRegistrationRepo{}, &fakeTicketRepo{}, nil)

	_, err := svc.GetUserRegistrations(context.Background(), auth.Identity{UID: "u1"}, false)

	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}
