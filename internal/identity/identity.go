// Package identity derives deterministic person-identity keys from
// loosely-structured member records so that registrations, accommodation
// bookings and tickets can be correlated across independent tables.
package identity

import (
	"strconv"
	"strings"

	"github.com/prakida/festival-backend/internal/entity"
)

// NormalizeName trims, collapses internal whitespace and lowercases.
func NormalizeName(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizePhone strips everything but digits and keeps the last 10 digits,
// which absorbs country-code prefixes like +91.
func NormalizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// Key builds the identity key from whichever normalized fields are present,
// preferring the most complete combination. It is pure and total: an empty
// member yields the degenerate but deterministic "n:" key.
func Key(m entity.Member) string {
	name := NormalizeName(m.Name)
	email := NormalizeEmail(m.Email)
	phone := NormalizePhone(m.Phone)

	switch {
	case name != "" && email != "" && phone != "":
		return "n:" + name + "|e:" + email + "|p:" + phone
	case email != "" && phone != "":
		return "e:" + email + "|p:" + phone
	case email != "" && name != "":
		return "e:" + email + "|n:" + name
	case phone != "" && name != "":
		return "p:" + phone + "|n:" + name
	case phone != "":
		return "p:" + phone
	case email != "":
		return "e:" + email
	default:
		return "n:" + name
	}
}

// SelectionKey is the position-qualified variant used only for UI selection
// state: selecting item N must not jump to a different person when the
// underlying list re-sorts. Never use it for cross-referencing.
func SelectionKey(m entity.Member, index int) string {
	return Key(m) + "::" + strconv.Itoa(index)
}

// Dedupe drops later duplicates, but only when normalized name, email and
// phone are all present and identical. Partial matches are intentionally left
// unmerged.
func Dedupe(members []entity.Member) []entity.Member {
	out := make([]entity.Member, 0, len(members))
	seen := make(map[string]struct{}, len(members))

	for _, m := range members {
		name := NormalizeName(m.Name)
		email := NormalizeEmail(m.Email)
		phone := NormalizePhone(m.Phone)

		if name != "" && email != "" && phone != "" {
			key := "n:" + name + "|e:" + email + "|p:" + phone
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}

		out = append(out, m)
	}

	return out
}
