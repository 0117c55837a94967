package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prakida/festival-backend/internal/entity"
)

type accommodationRepository struct {
	db *sql.DB
}

func NewAccommodationRepository(db *sql.DB) AccommodationRepository {
	return &accommodationRepository{db: db}
}

func (r *accommodationRepository) Create(ctx context.Context, booking *entity.AccommodationBooking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now()

	query := `
		INSERT INTO accommodation_bookings (
			id, user_id, college, team_name, preferences,
			payment_status, payment_url, provider_order_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.College,
		booking.TeamName,
		booking.Preferences,
		booking.PaymentStatus,
		booking.PaymentURL,
		booking.ProviderOrderID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create accommodation booking: %v", err)
	}

	memberQuery := `
		INSERT INTO accommodation_members (booking_id, name, email, phone, gender, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, m := range booking.Members {
		if _, err := tx.ExecContext(ctx, memberQuery,
			booking.ID, m.Name, m.Email, m.Phone, m.Gender, now,
		); err != nil {
			return fmt.Errorf("failed to add accommodation member: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (r *accommodationRepository) GetByID(ctx context.Context, id string) (*entity.AccommodationBooking, error) {
	query := `
		SELECT
			id, user_id, college, team_name, COALESCE(preferences, ''),
			payment_status, COALESCE(payment_url, ''), COALESCE(provider_order_id, ''),
			created_at, updated_at
		FROM accommodation_bookings
		WHERE id = $1
	`

	var b entity.AccommodationBooking
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.College, &b.TeamName, &b.Preferences,
		&b.PaymentStatus, &b.PaymentURL, &b.ProviderOrderID,
		&b.CreatedAt, &b.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrAccommodationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get accommodation booking: %v", err)
	}

	members, err := r.getMembers(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Members = members

	return &b, nil
}

func (r *accommodationRepository) getMembers(ctx context.Context, bookingID string) ([]entity.Member, error) {
	query := `
		SELECT name, email, COALESCE(phone, ''), COALESCE(gender, '')
		FROM accommodation_members
		WHERE booking_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accommodation members: %v", err)
	}
	defer rows.Close()

	var members []entity.Member
	for rows.Next() {
		var m entity.Member
		if err := rows.Scan(&m.Name, &m.Email, &m.Phone, &m.Gender); err != nil {
			return nil, fmt.Errorf("failed to scan accommodation member: %v", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *accommodationRepository) GetByUser(ctx context.Context, userID string) ([]*entity.AccommodationBooking, error) {
	query := `
		SELECT
			id, user_id, college, team_name, COALESCE(preferences, ''),
			payment_status, COALESCE(payment_url, ''), COALESCE(provider_order_id, ''),
			created_at, updated_at
		FROM accommodation_bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accommodation bookings: %v", err)
	}
	defer rows.Close()

	return r.scanBookingsWithMembers(ctx, rows)
}

// GetPending returns bookings whose payment status is still unset or contains
// "pending"; these are the ones worth refreshing from the provider.
func (r *accommodationRepository) GetPending(ctx context.Context, limit int) ([]*entity.AccommodationBooking, error) {
	query := `
		SELECT
			id, user_id, college, team_name, COALESCE(preferences, ''),
			payment_status, COALESCE(payment_url, ''), COALESCE(provider_order_id, ''),
			created_at, updated_at
		FROM accommodation_bookings
		WHERE payment_status = '' OR payment_status ILIKE '%pending%'
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bookings: %v", err)
	}
	defer rows.Close()

	return r.scanBookingsWithMembers(ctx, rows)
}

func (r *accommodationRepository) scanBookingsWithMembers(ctx context.Context, rows *sql.Rows) ([]*entity.AccommodationBooking, error) {
	var bookings []*entity.AccommodationBooking
	for rows.Next() {
		var b entity.AccommodationBooking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.College, &b.TeamName, &b.Preferences,
			&b.PaymentStatus, &b.PaymentURL, &b.ProviderOrderID,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan accommodation booking: %v", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range bookings {
		members, err := r.getMembers(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Members = members
	}
	return bookings, nil
}

func (r *accommodationRepository) UpdateStatus(ctx context.Context, id, status, paymentURL string) error {
	query := `
		UPDATE accommodation_bookings
		SET payment_status = $1,
		    payment_url = COALESCE(NULLIF($2, ''), payment_url),
		    updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, paymentURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update accommodation status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrAccommodationNotFound
	}
	return nil
}
