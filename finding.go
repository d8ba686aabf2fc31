package holdings

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FindingKind classifies a Finding.
type FindingKind string

const (
	// FindingInconsistency is a numeric relationship that does not hold.
	FindingInconsistency FindingKind = "inconsistency"
	// FindingCorrection is a field overwritten by a consistency rule. It
	// always follows the inconsistency that triggered it.
	FindingCorrection FindingKind = "correction"
	// FindingInvalidISIN is a record kept despite an ISIN failing its checksum.
	FindingInvalidISIN FindingKind = "invalid-isin"
	// FindingResolution is an identity adopted from the reference database by name.
	FindingResolution FindingKind = "resolution"
	// FindingCorroboration is a disagreement with, or data taken from, the vision service.
	FindingCorroboration FindingKind = "corroboration"
)

// Finding is an auditable note about the result: a warning, or a
// correction that was applied.
type Finding struct {
	Kind     FindingKind
	Key      string // identity key of the record, "" for portfolio-level findings
	Rule     string // name of the check or rule
	Field    string
	Expected decimal.NullDecimal
	Actual   decimal.NullDecimal
	Message  string
}

func (f Finding) String() string {
	s := string(f.Kind)
	if f.Rule != "" {
		s += " " + f.Rule
	}
	if f.Key != "" {
		s += " " + f.Key
	}
	if f.Field != "" {
		s += fmt.Sprintf(" %s", f.Field)
	}
	if f.Expected.Valid || f.Actual.Valid {
		s += fmt.Sprintf(" expected=%s actual=%s", nullString(f.Expected), nullString(f.Actual))
	}
	if f.Message != "" {
		s += ": " + f.Message
	}
	return s
}

func (f Finding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", f.Kind)
	w.Optional("key", f.Key)
	w.Optional("rule", f.Rule)
	w.Optional("field", f.Field)
	w.Decimal("expected", f.Expected)
	w.Decimal("actual", f.Actual)
	w.Optional("message", f.Message)
	return w.MarshalJSON()
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}
