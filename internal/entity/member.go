package entity

import "strings"

// Member is a loosely-structured person record. There is no guaranteed unique
// id; identity must be derived from the normalized fields.
type Member struct {
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
	Phone  string `json:"phone" db:"phone"`
	Gender string `json:"gender,omitempty" db:"gender"`
	Role   string `json:"role,omitempty" db:"role"`
}

// NormalizeGender maps free-form gender input to "M"/"F", leaving anything
// else trimmed but untouched.
func NormalizeGender(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "m", "male":
		return "M"
	case "f", "female":
		return "F"
	}
	return strings.TrimSpace(value)
}

// UnmarshalJSON tolerates the alternate field names used by older clients
// (phone_number for phone).
func (m *Member) UnmarshalJSON(data []byte) error {
	type raw struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		PhoneNumber string `json:"phone_number"`
		Gender      string `json:"gender"`
		Role        string `json:"role"`
	}
	var r raw
	if err := unmarshalJSON(data, &r); err != nil {
		return err
	}
	m.Name = r.Name
	m.Email = r.Email
	m.Phone = r.Phone
	if m.Phone == "" {
		m.Phone = r.PhoneNumber
	}
	m.Gender = r.Gender
	m.Role = r.Role
	return nil
}
