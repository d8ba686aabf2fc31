package holdings

import (
	"regexp"
	"slices"

	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/security"
	"github.com/shopspring/decimal"
)

// headerRule maps a header pattern to a role.
type headerRule struct {
	role    ColumnRole
	pattern *regexp.Regexp
}

// headerRules are tried in order, the first match wins. More specific
// patterns come first: "acquisition price" before "price", "value date"
// before "value", "nominal value" before "value" and "market value" before
// "market price".
var headerRules = []headerRule{
	{RoleISIN, regexp.MustCompile(`(?i)\bisin\b|\bvalor\b|\bwkn\b|security\s*(id|code)|identifier`)},
	{RoleAcquisitionPrice, regexp.MustCompile(`(?i)(acqu|purchase|buy|cost|entry|avg|average|book)\w*\.?\s*(price|cost|rate)|cost\s*price|unit\s*cost|prix\s*d.achat|einstand`)},
	{RoleDate, regexp.MustCompile(`(?i)(value|trade|settle\w*|booking|valuation)\s*date|^\s*date\s*$|datum`)},
	{RoleMaturity, regexp.MustCompile(`(?i)matur|expir|due\s*date|redemption|f[äa]llig|[ée]ch[ée]ance`)},
	{RoleCoupon, regexp.MustCompile(`(?i)coupon|interest\s*rate|zins|kupon`)},
	{RoleWeight, regexp.MustCompile(`(?i)weight|alloc|%\s*(of|port|tot|assets)|\bpct\b|percent|anteil|poids`)},
	{RoleCurrency, regexp.MustCompile(`(?i)^\s*(ccy|cur|curr|currency|devise|w[äa]hrung|divisa)\.?\s*$`)},
	{RoleQuantity, regexp.MustCompile(`(?i)quantit|\bqty\b|nominal|shares|\bunits\b|amount\s*held|face\s*value|st[üu]ck|anzahl|nombre`)},
	{RoleValue, regexp.MustCompile(`(?i)value|valuation|counter\s*value|worth|kurswert|montant|valeur|valorisation`)},
	{RolePrice, regexp.MustCompile(`(?i)price|quote|\bkurs\b|\bcours\b|prix|\blast\b|close`)},
	{RoleValue, regexp.MustCompile(`(?i)market|amount|total|\bmv\b`)},
	{RoleName, regexp.MustCompile(`(?i)descr|security|securities|name|designation|instrument|title|holding|bezeichnung|libell|titre`)},
}

// ColumnClassifier assigns a semantic role to each column of a table.
type ColumnClassifier struct {
	// MinShare is the share of non-empty values that must agree for a
	// content-based role. It defaults to 0.5.
	MinShare float64
}

// Classify returns the role of each column index in [0, number of columns).
//
// Headers are matched first against the per-role patterns, first match wins.
// Columns left unknown are classified from their content: ISIN shapes,
// currency codes, currency marks, percent marks, dates, then numeric
// magnitudes. Only one column gets RoleISIN and one RoleName: the first
// header match, or for names the most textual column left unknown.
//
// Ties are resolved by rule order, never by a score, so that the outcome is
// easy to predict.
func (c ColumnClassifier) Classify(headers []string, rows [][]string) ColumnRoles {
	share := c.MinShare
	if share <= 0 {
		share = 0.5
	}
	width := len(headers)
	for _, r := range rows {
		width = max(width, len(r))
	}
	roles := make(ColumnRoles, width)
	for j := 0; j < width; j++ {
		roles[j] = RoleUnknown
		if j < len(headers) {
			roles[j] = classifyHeader(headers[j])
		}
	}
	// A second ISIN or name header is more likely a mislabeled column.
	for _, role := range []ColumnRole{RoleISIN, RoleName} {
		if first := roles.Column(role); first >= 0 {
			for j := first + 1; j < width; j++ {
				if roles[j] == role {
					roles[j] = RoleUnknown
				}
			}
		}
	}
	for j := 0; j < width; j++ {
		if roles[j] == RoleUnknown {
			roles[j] = classifyContent(column(rows, j), share)
		}
	}
	if !roles.Has(RoleName) {
		if j := mostTextual(rows, roles); j >= 0 {
			roles[j] = RoleName
		}
	}
	return roles
}

// classifyHeader returns the role of a header label, RoleUnknown when no pattern matches.
func classifyHeader(h string) ColumnRole {
	if h == "" {
		return RoleUnknown
	}
	for _, r := range headerRules {
		if r.pattern.MatchString(h) {
			return r.role
		}
	}
	return RoleUnknown
}

// classifyContent returns the role implied by the non-empty values of a column.
func classifyContent(values []string, share float64) ColumnRole {
	var isins, currencies, percents, dates, codes int
	var nums []decimal.Decimal
	for _, v := range values {
		if security.LooksLikeISIN(v) {
			isins++
		}
		if hasCurrencyMark(v) {
			currencies++
		}
		if hasPercentMark(v) {
			percents++
		}
		if date.Find(v) == v {
			dates++
		}
		if len(v) == 3 && IsCurrencyCode(v) {
			codes++
		}
		if d, ok := ParseNumber(v); ok {
			nums = append(nums, d)
		}
	}
	n := float64(len(values))
	if n == 0 {
		return RoleUnknown
	}
	enough := func(k int) bool { return float64(k) >= share*n }
	switch {
	case enough(isins):
		return RoleISIN
	case enough(codes):
		return RoleCurrency
	case enough(currencies):
		return RoleValue
	case enough(percents):
		return RoleWeight
	case enough(dates):
		return RoleDate
	case !enough(len(nums)) || len(nums) == 0:
		return RoleUnknown
	}
	return magnitudeRole(nums)
}

// magnitudeRole buckets numeric columns by the magnitude of their median:
// up to 100 is a weight, above 1000 a value, in between a price.
func magnitudeRole(nums []decimal.Decimal) ColumnRole {
	m := median(nums).Abs()
	switch {
	case m.LessThanOrEqual(decimal.NewFromInt(100)):
		return RoleWeight
	case m.GreaterThan(decimal.NewFromInt(1000)):
		return RoleValue
	default:
		return RolePrice
	}
}

func median(nums []decimal.Decimal) decimal.Decimal {
	s := slices.Clone(nums)
	slices.SortFunc(s, decimal.Decimal.Cmp)
	return s[len(s)/2]
}

// column returns the non-empty values of column j.
func column(rows [][]string, j int) []string {
	var out []string
	for i := range rows {
		if v := cell(rows, i, j); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// mostTextual returns the unknown column with the most non-numeric values
// containing letters, or -1.
func mostTextual(rows [][]string, roles ColumnRoles) int {
	best, bestCount := -1, 0
	for j := 0; j < len(roles); j++ {
		if roles[j] != RoleUnknown {
			continue
		}
		count := 0
		for _, v := range column(rows, j) {
			if _, ok := ParseNumber(v); !ok && hasLetter(v) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = j, count
		}
	}
	return best
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 0x7f {
			return true
		}
	}
	return false
}
