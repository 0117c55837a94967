package entity

import (
	"time"
)

// Ticket is a single-pass entry pass, the single-row sibling of Registration
// in the settlement flow.
type Ticket struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"user_id" db:"user_id"`
	Price          float64       `json:"price" db:"price"`
	PaymentStatus  PaymentStatus `json:"payment_status" db:"payment_status"`
	QRCodeURL      string        `json:"qr_code_url,omitempty" db:"qr_code_url"`
	TiqrBookingUID string        `json:"tiqr_booking_uid,omitempty" db:"tiqr_booking_uid"`
	TiqrBookingID  string        `json:"tiqr_booking_id,omitempty" db:"tiqr_booking_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}
