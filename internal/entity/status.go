package entity

import (
	"encoding/json"
	"strings"
)

// unmarshalJSON is a tiny indirection so custom unmarshalers in this package
// can share the stdlib decoder without import cycles in tests.
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type PaymentStatus string

const (
	PaymentStatusUnset     PaymentStatus = ""
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// StatusRank orders payment statuses for reconciliation: when several records
// reference the same identity, the highest rank wins.
//
// Variant labels are tolerated by substring match ("pending_payment" ranks as
// pending, "cancelled" as failed).
func StatusRank(status string) int {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case s == "confirmed":
		return 3
	case strings.Contains(s, "pending"):
		return 2
	case strings.Contains(s, "failed") || strings.Contains(s, "cancel"):
		return 1
	default:
		return 0
	}
}
