package security

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Entry is the canonical identity of a security in the reference database.
type Entry struct {
	ISIN         string            `json:"isin" validate:"required,isin"`
	Name         string            `json:"name" validate:"required"`
	Ticker       string            `json:"ticker,omitempty"`
	Sector       string            `json:"sector,omitempty"`
	Industry     string            `json:"industry,omitempty"`
	SecurityType string            `json:"security_type,omitempty"`
	Country      string            `json:"country,omitempty" validate:"omitempty,len=2"`
	Currency     string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Exchange     string            `json:"exchange,omitempty"`
	CUSIP        string            `json:"cusip,omitempty" validate:"omitempty,len=9"`
	SEDOL        string            `json:"sedol,omitempty" validate:"omitempty,len=7"`
	FIGI         string            `json:"figi,omitempty" validate:"omitempty,len=12"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// entryValidator returns the shared validator, with the "isin" tag registered.
func entryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// RegisterValidation only fails on empty tags or nil func.
		_ = validate.RegisterValidation("isin", func(fl validator.FieldLevel) bool {
			return IsValidISIN(fl.Field().String())
		})
	})
	return validate
}

// Validate checks that the entry carries a valid ISIN and a name, and that
// optional codes have the right length.
func (e Entry) Validate() error {
	if err := entryValidator().Struct(e); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				if fe.Tag() == "isin" {
					return fmt.Errorf("entry %q: %w", e.ISIN, ValidateISIN(e.ISIN))
				}
			}
		}
		return fmt.Errorf("invalid entry %q: %w", e.ISIN, err)
	}
	return nil
}

// clone returns a deep copy of the entry, so that callers can't alter the database content.
func (e Entry) clone() Entry {
	if e.Metadata != nil {
		m := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			m[k] = v
		}
		e.Metadata = m
	}
	return e
}
