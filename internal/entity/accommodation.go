package entity

import (
	"time"
)

// AccommodationBooking covers several members at once (many-to-many with
// Member). Its payment status is pulled from the provider rather than pushed
// via webhook.
type AccommodationBooking struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	College         string    `json:"college" db:"college"`
	TeamName        string    `json:"team_name" db:"team_name"`
	Preferences     string    `json:"preferences,omitempty" db:"preferences"`
	PaymentStatus   string    `json:"payment_status" db:"payment_status"`
	PaymentURL      string    `json:"payment_url,omitempty" db:"payment_url"`
	ProviderOrderID string    `json:"provider_order_id,omitempty" db:"provider_order_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	Members         []Member  `json:"members,omitempty"`
}

// UnmarshalJSON reconciles the loose field naming seen in provider and legacy
// payloads (paymentStatus vs payment_status vs status) once at the boundary,
// so business logic never repeats defensive lookups.
func (b *AccommodationBooking) UnmarshalJSON(data []byte) error {
	type raw struct {
		ID               string    `json:"id"`
		UserID           string    `json:"user_id"`
		College          string    `json:"college"`
		TeamName         string    `json:"team_name"`
		TeamNameCamel    string    `json:"teamName"`
		Preferences      string    `json:"preferences"`
		PaymentStatus    string    `json:"payment_status"`
		PaymentStatusCml string    `json:"paymentStatus"`
		Status           string    `json:"status"`
		PaymentURL       string    `json:"payment_url"`
		PaymentURLCamel  string    `json:"paymentUrl"`
		ProviderOrderID  string    `json:"provider_order_id"`
		CreatedAt        time.Time `json:"created_at"`
		UpdatedAt        time.Time `json:"updated_at"`
		Members          []Member  `json:"members"`
	}
	var r raw
	if err := unmarshalJSON(data, &r); err != nil {
		return err
	}

	b.ID = r.ID
	b.UserID = r.UserID
	b.College = r.College
	b.TeamName = firstNonEmpty(r.TeamName, r.TeamNameCamel)
	b.Preferences = r.Preferences
	b.PaymentStatus = firstNonEmpty(r.PaymentStatus, r.PaymentStatusCml, r.Status)
	b.PaymentURL = firstNonEmpty(r.PaymentURL, r.PaymentURLCamel)
	b.ProviderOrderID = r.ProviderOrderID
	b.CreatedAt = r.CreatedAt
	b.UpdatedAt = r.UpdatedAt
	b.Members = r.Members
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
