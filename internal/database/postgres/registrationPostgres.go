package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/prakida/festival-backend/internal/entity"
)

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Create inserts the registration and its team members in one transaction.
func (r *registrationRepository) Create(ctx context.Context, registration *entity.Registration) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now()

	query := `
		INSERT INTO registrations (
			id, user_id, team_name, sport, category, team_unique_id,
			payment_status, payment_amount, tiqr_booking_uid, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.ExecContext(ctx, query,
		registration.ID,
		registration.UserID,
		registration.TeamName,
		registration.Sport,
		registration.Category,
		registration.TeamUniqueID,
		registration.PaymentStatus,
		registration.PaymentAmount,
		registration.TiqrBookingUID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration: %v", err)
	}

	memberQuery := `
		INSERT INTO team_members (registration_id, name, email, phone, gender, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, m := range registration.Members {
		if _, err := tx.ExecContext(ctx, memberQuery,
			registration.ID, m.Name, m.Email, m.Phone, m.Gender, m.Role, now,
		); err != nil {
			return fmt.Errorf("failed to add team member: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	registration.CreatedAt = now
	registration.UpdatedAt = now
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*entity.Registration, error) {
	query := `
		SELECT
			id, user_id, team_name, sport, category, team_unique_id,
			payment_status, payment_amount,
			COALESCE(ticket_pdf_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_via_tiqr, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`

	var reg entity.Registration
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID,
		&reg.UserID,
		&reg.TeamName,
		&reg.Sport,
		&reg.Category,
		&reg.TeamUniqueID,
		&reg.PaymentStatus,
		&reg.PaymentAmount,
		&reg.TicketPDFURL,
		&reg.TiqrBookingUID,
		&reg.TiqrBookingID,
		&reg.CreatedViaTiqr,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %v", err)
	}

	members, err := r.getMembers(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	reg.Members = members

	return &reg, nil
}

func (r *registrationRepository) getMembers(ctx context.Context, registrationID string) ([]entity.Member, error) {
	query := `
		SELECT name, email, COALESCE(phone, ''), COALESCE(gender, ''), COALESCE(role, '')
		FROM team_members
		WHERE registration_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %v", err)
	}
	defer rows.Close()

	var members []entity.Member
	for rows.Next() {
		var m entity.Member
		if err := rows.Scan(&m.Name, &m.Email, &m.Phone, &m.Gender, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %v", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// GetByMemberEmail returns registrations where the email appears in the team
// member list (case-insensitive), each tagged with the stored member role.
func (r *registrationRepository) GetByMemberEmail(ctx context.Context, email string) ([]*entity.Registration, error) {
	query := `
		SELECT
			reg.id, reg.user_id, reg.team_name, reg.sport, reg.category, reg.team_unique_id,
			reg.payment_status, reg.payment_amount,
			COALESCE(reg.ticket_pdf_url, ''), COALESCE(reg.tiqr_booking_uid, ''),
			COALESCE(reg.tiqr_booking_id, ''), reg.created_via_tiqr,
			reg.created_at, reg.updated_at, COALESCE(tm.role, '')
		FROM team_members tm
		JOIN registrations reg ON reg.id = tm.registration_id
		WHERE LOWER(tm.email) = LOWER($1)
		ORDER BY reg.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get member registrations: %v", err)
	}
	defer rows.Close()

	return scanRegistrationRows(rows, true)
}

func (r *registrationRepository) GetByCreator(ctx context.Context, userID string) ([]*entity.Registration, error) {
	query := `
		SELECT
			id, user_id, team_name, sport, category, team_unique_id,
			payment_status, payment_amount,
			COALESCE(ticket_pdf_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_via_tiqr, created_at, updated_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator registrations: %v", err)
	}
	defer rows.Close()

	return scanRegistrationRows(rows, false)
}

func (r *registrationRepository) GetAll(ctx context.Context) ([]*entity.Registration, error) {
	query := `
		SELECT
			id, user_id, team_name, sport, category, team_unique_id,
			payment_status, payment_amount,
			COALESCE(ticket_pdf_url, ''), COALESCE(tiqr_booking_uid, ''),
			COALESCE(tiqr_booking_id, ''), created_via_tiqr, created_at, updated_at
		FROM registrations
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %v", err)
	}
	defer rows.Close()

	return scanRegistrationRows(rows, false)
}

func scanRegistrationRows(rows *sql.Rows, withRole bool) ([]*entity.Registration, error) {
	var registrations []*entity.Registration
	for rows.Next() {
		var reg entity.Registration
		dest := []interface{}{
			&reg.ID, &reg.UserID, &reg.TeamName, &reg.Sport, &reg.Category,
			&reg.TeamUniqueID, &reg.PaymentStatus, &reg.PaymentAmount,
			&reg.TicketPDFURL, &reg.TiqrBookingUID, &reg.TiqrBookingID,
			&reg.CreatedViaTiqr, &reg.CreatedAt, &reg.UpdatedAt,
		}
		if withRole {
			dest = append(dest, &reg.Role)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %v", err)
		}
		registrations = append(registrations, &reg)
	}
	return registrations, rows.Err()
}

// FindDuplicateEmails returns the subset of emails already present on a team
// member for the same sport and category.
func (r *registrationRepository) FindDuplicateEmails(ctx context.Context, emails []string, sport, category string) ([]string, error) {
	query := `
		SELECT DISTINCT LOWER(tm.email)
		FROM team_members tm
		JOIN registrations reg ON reg.id = tm.registration_id
		WHERE LOWER(tm.email) = ANY($1)
		  AND reg.sport = $2
		  AND reg.category = $3
	`

	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(lowered), sport, category)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %v", err)
	}
	defer rows.Close()

	var duplicates []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate email: %v", err)
		}
		duplicates = append(duplicates, email)
	}
	return duplicates, rows.Err()
}

func (r *registrationRepository) UpdateBookingUID(ctx context.Context, id, bookingUID string) error {
	query := `UPDATE registrations SET tiqr_booking_uid = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, bookingUID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking uid: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrRegistrationNotFound
	}
	return nil
}

// SetBookingUIDIfAbsent assigns a booking uid only when none is stored. The
// guard lives in the WHERE clause so a provider-issued uid can never be
// overwritten by the self-heal path.
func (r *registrationRepository) SetBookingUIDIfAbsent(ctx context.Context, id, bookingUID string) error {
	query := `
		UPDATE registrations
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
			`SELECT EXISTS(SELECT 1 FROM registrations WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check registration: %v", err)
		}
		if exists {
			return entity.ErrBookingUIDExists
		}
		return entity.ErrRegistrationNotFound
	}
	return nil
}

// ApplySettlement writes the settlement outcome onto the registration matching
// the booking uid. The equality filter makes redelivery idempotent: applying
// the same event again rewrites the same values. The row's previous status is
// returned so one-shot side effects can detect a redelivery.
func (r *registrationRepository) ApplySettlement(ctx context.Context, bookingUID string, update *SettlementUpdate) (string, entity.PaymentStatus, error) {
	query := `
		UPDATE registrations reg
		SET payment_status = $1,
		    tiqr_booking_id = COALESCE(NULLIF($2, ''), reg.tiqr_booking_id),
		    ticket_pdf_url = COALESCE(NULLIF($3, ''), reg.ticket_pdf_url),
		    payment_amount = CASE WHEN $4 > 0 THEN $4 ELSE reg.payment_amount END,
		    created_via_tiqr = TRUE,
		    updated_at = $5
		FROM (
			SELECT id, payment_status AS prev_status
			FROM registrations
			WHERE tiqr_booking_uid = $6
			FOR UPDATE
		) old
		WHERE reg.id = old.id
		RETURNING reg.id, old.prev_status
	`

	var id string
	var prev entity.PaymentStatus
	err := r.db.QueryRowContext(ctx, query,
		update.Status, update.BookingID, update.ArtifactURL, update.Amount,
		time.Now(), bookingUID,
	).Scan(&id, &prev)

	if err == sql.ErrNoRows {
		return "", "", entity.ErrNoCorrelatedRecord
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to apply settlement: %v", err)
	}
	return id, prev, nil
}

func (r *registrationRepository) UpdatePaymentStatus(ctx context.Context, id string, status entity.PaymentStatus, amount float64) error {
	query := `
		UPDATE registrations
		SET payment_status = $1,
		    payment_amount = CASE WHEN $2 > 0 THEN $2 ELSE payment_amount END,
		    updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, amount, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %v", err)
	}
	if affected == 0 {
		return entity.ErrRegistrationNotFound
	}
	return nil
}
