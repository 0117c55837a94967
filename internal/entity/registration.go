package entity

import (
	"time"
)

// Registration is a team registration for one sport/category. It is created
// with status pending and settled exactly once by the settlement handler.
type Registration struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"user_id" db:"user_id"`
	TeamName       string        `json:"team_name" db:"team_name"`
	Sport          string        `json:"sport" db:"sport"`
	Category       string        `json:"category" db:"category"`
	TeamUniqueID   string        `json:"team_unique_id" db:"team_unique_id"`
	PaymentStatus  PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentAmount  float64       `json:"payment_amount" db:"payment_amount"`
	TicketPDFURL   string        `json:"ticket_pdf_url,omitempty" db:"ticket_pdf_url"`
	TiqrBookingUID string        `json:"tiqr_booking_uid,omitempty" db:"tiqr_booking_uid"`
	TiqrBookingID  string        `json:"tiqr_booking_id,omitempty" db:"tiqr_booking_id"`
	CreatedViaTiqr bool          `json:"created_via_tiqr" db:"created_via_tiqr"`
	Role           string        `json:"role,omitempty"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
	Members        []Member      `json:"members,omitempty"`
}
