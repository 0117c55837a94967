package service

import (
	"context"
	"testing"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/identity"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/prakida/festival-backend/pkg/tiqr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusByIdentityPicksHighestRank(t *testing.T) {
	alex := entity.Member{Name: "Alex Roy", Email: "alex@x.com", Phone: "9876543210"}

	bookings := []*entity.AccommodationBooking{
		{PaymentStatus: "pending", Members: []entity.Member{alex}},
		{PaymentStatus: "confirmed", Members: []entity.Member{alex}},
		{PaymentStatus: "failed", Members: []entity.Member{alex}},
	}

	statuses := StatusByIdentity(bookings)

	assert.Equal(t, "confirmed", statuses[identity.Key(alex)])
}

func TestStatusByIdentityToleratesVariantLabels(t *testing.T) {
	m := entity.Member{Email: "p@x.com"}

	statuses := StatusByIdentity([]*entity.AccommodationBooking{
		{PaymentStatus: "pending_payment", Members: []entity.Member{m}},
	})

	assert.Equal(t, "pending_payment", statuses[identity.Key(m)])
	assert.Equal(t, 2, entity.StatusRank(statuses[identity.Key(m)]))
}

func TestStatusByIdentityLabelsUnsetStatusUnknown(t *testing.T) {
	m := entity.Member{Name: "Alex Roy", Email: "alex@x.com"}

	statuses := StatusByIdentity([]*entity.AccommodationBooking{
		{PaymentStatus: "", Members: []entity.Member{m}},
	})

	assert.Equal(t, "unknown", statuses[identity.Key(m)])
}

func TestStatusByIdentityMergesFormattingVariants(t *testing.T) {
	// The end-to-end example: differently formatted records of the same
	// person must collapse into a single identity.
	a := entity.Member{Name: "Alex Roy", Email: "Alex@X.com ", Phone: "+91 98765-43210"}
	b := entity.Member{Name: "alex roy", Email: "alex@x.com", Phone: "9876543210"}

	statuses := StatusByIdentity([]*entity.AccommodationBooking{
		{PaymentStatus: "pending", Members: []entity.Member{a}},
		{PaymentStatus: "confirmed", Members: []entity.Member{b}},
	})

	require.Len(t, statuses, 1)
	assert.Equal(t, "confirmed", statuses[identity.Key(a)])
}

func TestClassifyRoster(t *testing.T) {
	confirmed := entity.Member{Name: "A", Email: "a@x.com", Phone: "1111111111"}
	pending := entity.Member{Name: "B", Email: "b@x.com", Phone: "2222222222"}
	failed := entity.Member{Name: "C", Email: "c@x.com", Phone: "3333333333"}
	fresh := entity.Member{Name: "D", Email: "d@x.com", Phone: "4444444444"}

	statuses := map[string]string{
		identity.Key(confirmed): "confirmed",
		identity.Key(pending):   "pending_payment",
		identity.Key(failed):    "cancelled",
	}

	buckets := ClassifyRoster([]entity.Member{confirmed, pending, failed, fresh}, statuses)

	assert.Equal(t, []entity.Member{confirmed}, buckets.Booked)
	assert.Equal(t, []entity.Member{pending}, buckets.Pending)
	// Failed members are excluded from the flow entirely: not remaining, not
	// bookable.
	assert.Equal(t, []entity.Member{fresh}, buckets.Remaining)
}

func TestBookValidatesMembers(t *testing.T) {
	svc := NewAccommodationService(&fakeAccommodationRepo{}, &fakeRegistrationRepo{}, tiqr.NewMockClient("http://localhost:8080"))

	tests := []struct {
		name   string
		member entity.Member
	}{
		{
			name:   "missing phone",
			member: entity.Member{Name: "A", Email: "a@x.com", Gender: "M"},
		},
		{
			name:   "missing gender",
			member: entity.Member{Name: "A", Email: "a@x.com", Phone: "1234567890"},
		},
		{
			name:   "missing name",
			member: entity.Member{Email: "a@x.com", Phone: "1234567890", Gender: "F"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), auth.Identity{UID: "u1"}, &BookAccommodationRequest{
				College: "BIT",
				Members: []entity.Member{tt.member},
			})
			assert.ErrorIs(t, err, entity.ErrInvalidMember)
		})
	}
}

func TestBookNormalizesGenderAndDedupes(t *testing.T) {
	repo := &fakeAccommodationRepo{}
	svc := NewAccommodationService(repo, &fakeRegistrationRepo{}, tiqr.NewMockClient("http://localhost:8080"))

	session, err := svc.Book(context.Background(), auth.Identity{UID: "user-1"}, &BookAccommodationRequest{
		College: "BIT",
		Members: []entity.Member{
			{Name: "Alex Roy", Email: "alex@x.com", Phone: "9876543210", Gender: "male"},
			{Name: "ALEX ROY", Email: "Alex@X.com", Phone: "+91 9876543210", Gender: "M"},
		},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.PaymentURL)
	assert.Contains(t, session.PaymentURL, "mock_payment_success=true")

	require.Len(t, repo.bookings, 1)
	require.Len(t, repo.bookings[0].Members, 1)
	assert.Equal(t, "M", repo.bookings[0].Members[0].Gender)
}

func TestRefreshPending(t *testing.T) {
	provider := tiqr.NewMockClient("http://localhost:8080")

	session, err := provider.CreateBooking(context.Background(), &tiqr.BookingRequest{Amount: 2})
	require.NoError(t, err)

	repo := &fakeAccommodationRepo{bookings: []*entity.AccommodationBooking{
		{ID: "b1", UserID: "u1", PaymentStatus: "pending", ProviderOrderID: session.BookingUID},
		{ID: "b2", UserID: "u1", PaymentStatus: "confirmed", ProviderOrderID: "done"},
	}}
	svc := NewAccommodationService(repo, &fakeRegistrationRepo{}, provider)

	// Provider settles the order out of band.
	provider.SettleOrder(session.BookingUID, "confirmed")

	updated, err := svc.RefreshPending(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, "confirmed", repo.bookings[0].PaymentStatus)
	assert.Equal(t, "confirmed", repo.bookings[1].PaymentStatus)
}

func TestRosterClassifiesRegisteredMembers(t *testing.T) {
	booked := entity.Member{Name: "Alex Roy", Email: "alex@x.com", Phone: "9876543210", Role: "Captain"}
	fresh := entity.Member{Name: "Priya Das", Email: "priya@x.com", Phone: "1112223333", Role: "Player"}

	regRepo := &fakeRegistrationRepo{registrations: []*entity.Registration{
		{
			ID:           "reg-1",
			UserID:       "u1",
			TeamUniqueID: "T1",
			Members:      []entity.Member{booked, fresh},
		},
	}}
	accRepo := &fakeAccommodationRepo{bookings: []*entity.AccommodationBooking{
		{
			ID:            "b1",
			UserID:        "u1",
			PaymentStatus: "confirmed",
			// Same person, different formatting.
			Members: []entity.Member{{Name: "ALEX ROY", Email: " Alex@X.com", Phone: "+91 98765 43210"}},
		},
	}}

	svc := NewAccommodationService(accRepo, regRepo, tiqr.NewMockClient("http://localhost:8080"))

	buckets, err := svc.Roster(context.Background(), auth.Identity{UID: "u1", Email: "alex@x.com"})

	require.NoError(t, err)
	require.Len(t, buckets.Booked, 1)
	assert.Equal(t, "Alex Roy", buckets.Booked[0].Name)
	require.Len(t, buckets.Remaining, 1)
	assert.Equal(t, "Priya Das", buckets.Remaining[0].Name)
	assert.Empty(t, buckets.Pending)
}
