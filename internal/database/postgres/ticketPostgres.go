package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prakida/festival-backend/internal/entity"
)

type ticketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, user_id, price, payment_status, tiqr_booking_uid, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Price,
		ticket.PaymentStatus,
		ticket.TiqrBookingUID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %v", err)
	}

	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	query := `
		SELECT
			id, user_id, price, payment_status,
			COALESCE(qr_code_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_at, updated_at
		FROM tickets
		WHERE id = $1
	`

	var t entity.Ticket
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Price,
		&t.PaymentStatus,
		&t.QRCodeURL,
		&t.TiqrBookingUID,
		&t.TiqrBookingID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %v", err)
	}
	return &t, nil
}

func (r *ticketRepository) GetByUserID(ctx context.Context, userID string) ([]*entity.Ticket, error) {
	query := `
		SELECT
			id, user_id, price, payment_status,
			COALESCE(qr_code_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_at, updated_at
		FROM tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tickets: %v", err)
	}
	defer rows.Close()

	return scanTicketRows(rows)
}

func (r *ticketRepository) GetAll(ctx context.Context) ([]*entity.Ticket, error) {
	query := `
		SELECT
			id, user_id, price, payment_status,
			COALESCE(qr_code_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_at, updated_at
		FROM tickets
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %v", err)
	}
	defer rows.Close()

	return scanTicketRows(rows)
}

func scanTicketRows(rows *sql.Rows) ([]*entity.Ticket, error) {
	var tickets []*entity.Ticket
	for rows.Next() {
		var t entity.Ticket
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Price, &t.PaymentStatus,
			&t.QRCodeURL, &t.TiqrBookingUID, &t.TiqrBookingID,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %v", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) UpdateBookingUID(ctx context.Context, id, bookingUID string) error {
	query := `UPDATE tickets SET tiqr_booking_uid = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, bookingUID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking uid: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error {
	query := `
		UPDATE tickets
		SET tiqr_booking_uid = $1, updated_at = $2
		WHERE id = $3 AND (tiqr_booking_uid IS NULL OR tiqr_booking_uid = '')
	`

	result, err := r.db.ExecContext(ctx, query, bookingUID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set booking uid: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check ticket: %v", err)
		}
		if exists {
			return entity.ErrBookingUIDExists
		}
		return entity.ErrTicketNotFound
	}
	return nil
}

// ApplySettlement mirrors the registration settlement write; the provider
// artifact url lands in qr_code_url for tickets.
func (r *ticketRepository) ApplySettlement(ctx context.Context, bookingUID string, update *SettlementUpdate) (string, entity.PaymentStatus, error) {
	query := `
		UPDATE tickets t
		SET payment_status = $1,
		    tiqr_booking_id = COALESCE(NULLIF($2, ''), t.tiqr_booking_id),
		    qr_code_url = COALESCE(NULLIF($3, ''), t.qr_code_url),
		    updated_at = $4
		FROM (
			SELECT id, payment_status AS prev_status
			FROM tickets
			WHERE tiqr_booking_uid = $5
			FOR UPDATE
		) old
		WHERE t.id = old.id
		RETURNING t.id, old.prev_status
	`

	var id string
	var prev entity.PaymentStatus
	err := r.db.QueryRowContext(ctx, query,
		update.Status, update.BookingID, update.ArtifactURL, time.Now(), bookingUID,
	).Scan(&id, &prev)

	if err == sql.ErrNoRows {
		return "", "", entity.ErrNoCorrelatedRecord
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to apply settlement: %v", err)
	}
	return id, prev, nil
}

func (r *ticketRepository) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus) error {
	query := `UPDATE tickets SET payment_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrTicketNotFound
	}
	return nil
}
