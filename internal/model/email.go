package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEmailFormat is returned when an email address fails validation.
var ErrInvalidEmailFormat = errors.New("invalid email format")

const (
	maxEmailLength     = 254
	maxLocalPartLength = 64
)

var validate = validator.New()

// EmailAddress is a validated, immutable email address.
// A non-zero EmailAddress is always well-formed.
type EmailAddress struct {
	value string
}

// NewEmailAddress validates raw and wraps it unchanged.
func NewEmailAddress(raw string) (EmailAddress, error) {
	if err := validateEmail(raw); err != nil {
		return EmailAddress{}, fmt.Errorf("%w: %s", ErrInvalidEmailFormat, err)
	}
	return EmailAddress{value: raw}, nil
}

// MustEmailAddress is like NewEmailAddress but panics on invalid input.
func MustEmailAddress(raw string) EmailAddress {
	email, err := NewEmailAddress(raw)
	if err != nil {
		panic(err)
	}
	return email
}

// String returns the address exactly as constructed.
func (e EmailAddress) String() string {
	return e.value
}

// IsZero reports whether e holds no address.
func (e EmailAddress) IsZero() bool {
	return e.value == ""
}

// Equals compares two addresses, case-sensitively.
func (e EmailAddress) Equals(other EmailAddress) bool {
	return e.value == other.value
}

// EqualsString compares the address against a raw string, case-sensitively.
func (e EmailAddress) EqualsString(other string) bool {
	return e.value == other
}

// MarshalJSON implements json.Marshaler.
func (e EmailAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.value)
}

// UnmarshalJSON implements json.Unmarshaler. The decoded value is validated.
func (e *EmailAddress) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewEmailAddress(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func validateEmail(raw string) error {
	if raw == "" {
		return errors.New("empty address")
	}
	if len(raw) > maxEmailLength {
		return errors.New("address too long")
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return errors.New("address contains whitespace")
	}

	local, domain, ok := strings.Cut(raw, "@")
	if !ok || strings.Contains(domain, "@") {
		return errors.New("address must contain exactly one @")
	}
	if local == "" || len(local) > maxLocalPartLength {
		return errors.New("invalid local part")
	}
	if !strings.Contains(domain, ".") {
		return errors.New("domain must contain a dot")
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return errors.New("domain has an empty label")
		}
	}

	if err := validate.Var(raw, "email"); err != nil {
		return errors.New("rejected by email grammar")
	}
	return nil
}
