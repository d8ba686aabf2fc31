package holdings

import (
	"encoding/json"
	"fmt"
)

// ColumnRole is the semantic label of a table column.
type ColumnRole int

const (
	// RoleUnknown is a column whose meaning could not be inferred. Free text
	// columns that are not the security name end up here too.
	RoleUnknown ColumnRole = iota
	RoleISIN
	RoleName
	RoleQuantity
	RolePrice
	RoleAcquisitionPrice
	RoleValue
	RoleCurrency
	RoleMaturity
	RoleCoupon
	RoleWeight
	RoleDate
)

var roleNames = [...]string{
	RoleUnknown:          "unknown",
	RoleISIN:             "isin",
	RoleName:             "security_name",
	RoleQuantity:         "quantity",
	RolePrice:            "price",
	RoleAcquisitionPrice: "acquisition_price",
	RoleValue:            "value",
	RoleCurrency:         "currency",
	RoleMaturity:         "maturity",
	RoleCoupon:           "coupon",
	RoleWeight:           "weight",
	RoleDate:             "date",
}

func (r ColumnRole) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "unknown"
	}
	return roleNames[r]
}

// ParseColumnRole parses the name of a role, as returned by String.
func ParseColumnRole(s string) (ColumnRole, error) {
	for i, n := range roleNames {
		if n == s {
			return ColumnRole(i), nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown column role: %q", s)
}

func (r ColumnRole) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *ColumnRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseColumnRole(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ColumnRoles maps a column index to its role. Absent columns are RoleUnknown.
type ColumnRoles map[int]ColumnRole

// Column returns the first column index having role, or -1.
func (m ColumnRoles) Column(role ColumnRole) int {
	best := -1
	for col, r := range m {
		if r == role && (best < 0 || col < best) {
			best = col
		}
	}
	return best
}

// Has reports whether some column has role.
func (m ColumnRoles) Has(role ColumnRole) bool { return m.Column(role) >= 0 }
