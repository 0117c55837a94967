package entity

// RecordKind names the two namespaces the settlement handler may target.
type RecordKind string

const (
	RecordKindRegistration RecordKind = "registrations"
	RecordKindTicket       RecordKind = "tickets"
)

// SettlementEvent is the inbound payment-provider callback payload. The same
// shape is used by the mock verification path.
type SettlementEvent struct {
	BookingUID  string `json:"booking_uid"`
	Status      string `json:"status"`
	BookingID   string `json:"booking_id,omitempty"`
	ArtifactURL string `json:"ticket_pdf_url,omitempty"`
}

// Outcome collapses the provider status to the two-valued settlement result:
// confirmed iff the inbound status is exactly "confirmed" or "paid".
func (e SettlementEvent) Outcome() PaymentStatus {
	if e.Status == "confirmed" || e.Status == "paid" {
		return PaymentStatusConfirmed
	}
	return PaymentStatusFailed
}

// SettlementResult reports which record a settlement event landed on.
type SettlementResult struct {
	Kind   RecordKind    `json:"table"`
	ID     string        `json:"id"`
	Status PaymentStatus `json:"status"`
}
