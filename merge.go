package holdings

import (
	"fmt"

	"github.com/etnz/holdings/logging"
	"github.com/etnz/holdings/security"
)

// DefaultMaxIterations bounds the identity resolution of a record.
const DefaultMaxIterations = 4

// Merger merges the records extracted from all tables into one record per
// identity, resolving identities against a reference database.
type Merger struct {
	db            *security.DB
	threshold     float64
	maxIterations int
}

// NewMerger returns a merger resolving names against db. db can be nil, then
// records are merged on their extracted identity only.
func NewMerger(db *security.DB) *Merger {
	return &Merger{db: db, threshold: security.DefaultThreshold, maxIterations: DefaultMaxIterations}
}

// SetThreshold sets the minimum fuzzy match score to adopt a reference identity.
func (m *Merger) SetThreshold(t float64) { m.threshold = t }

// Merge returns one record per identity key, in order of first appearance.
//
// Each record is first resolved: records without ISIN adopt the ISIN of the
// reference entry matching their ticker or name, and reference fields still
// null are backfilled. Then records sharing a key are merged field by field,
// the first non-null value in extraction order wins. Records without any key
// are dropped.
//
// The ISIN validity flag of the records is recomputed, never trusted.
// records is not modified. Merge is idempotent: merging its output again
// returns the same records.
func (m *Merger) Merge(records []SecurityRecord) ([]SecurityRecord, []Finding) {
	var findings []Finding
	var order []string
	groups := make(map[string]*SecurityRecord)
	for _, rec := range records {
		r := rec
		if r.ISIN != "" {
			r.setISIN(r.ISIN)
		}
		findings = append(findings, m.resolve(&r)...)
		key := r.Key()
		if key == "" {
			continue
		}
		if g, ok := groups[key]; ok {
			g.fill(&r)
			continue
		}
		groups[key] = &r
		order = append(order, key)
	}

	out := make([]SecurityRecord, 0, len(order))
	for _, key := range order {
		r := groups[key]
		if r.AssetClass == "" {
			if c, ok := inferAssetClass(r, ""); ok {
				r.AssetClass = c
			} else {
				r.AssetClass = Equity
			}
		}
		if r.ISIN != "" && !r.IsValidISIN {
			findings = append(findings, Finding{
				Kind:    FindingInvalidISIN,
				Key:     key,
				Rule:    "isin-checksum",
				Message: fmt.Sprintf("%s fails the ISIN check, record kept", r.ISIN),
			})
		}
		out = append(out, *r)
	}
	logging.Logger().WithField("records", len(records)).WithField("merged", len(out)).Debug("merge-records")
	return out, findings
}

// resolve applies the resolution steps to r until none changes it, at most
// maxIterations times. Steps adopt an ISIN (by ticker, exact name, fuzzy
// name) or backfill reference fields from the entry of the ISIN.
func (m *Merger) resolve(r *SecurityRecord) []Finding {
	if m.db == nil {
		return nil
	}
	var findings []Finding
	steps := []func(*SecurityRecord) (bool, *Finding){
		m.backfill,
		m.byTicker,
		m.byName,
	}
	for i := 0; i < max(m.maxIterations, 1); i++ {
		changed := false
		for _, step := range steps {
			c, f := step(r)
			changed = changed || c
			if f != nil {
				findings = append(findings, *f)
			}
		}
		if !changed {
			break
		}
	}
	return findings
}

// backfill fills the reference fields of r from the entry of its ISIN.
func (m *Merger) backfill(r *SecurityRecord) (bool, *Finding) {
	if r.ISIN == "" {
		return false, nil
	}
	e, ok := m.db.ByISIN(r.ISIN)
	if !ok {
		return false, nil
	}
	ref := SecurityRecord{
		Name:         e.Name,
		Ticker:       e.Ticker,
		Sector:       e.Sector,
		Industry:     e.Industry,
		SecurityType: e.SecurityType,
	}
	if c, ok := typeClass(e.SecurityType); ok && r.AssetClass == "" {
		ref.AssetClass = c
	}
	return r.fill(&ref), nil
}

func (m *Merger) byTicker(r *SecurityRecord) (bool, *Finding) {
	if r.ISIN != "" || r.Ticker == "" {
		return false, nil
	}
	e, ok := m.db.ByTicker(r.Ticker)
	if !ok {
		return false, nil
	}
	r.setISIN(e.ISIN)
	return true, nil
}

func (m *Merger) byName(r *SecurityRecord) (bool, *Finding) {
	if r.ISIN != "" || r.Name == "" {
		return false, nil
	}
	match, ok := m.db.FindBestMatch(r.Name, m.threshold)
	if !ok {
		return false, nil
	}
	r.setISIN(match.Entry.ISIN)
	logging.Logger().WithField("name", r.Name).WithField("isin", r.ISIN).WithField("score", match.Score).Debug("resolve-name")
	if match.Exact {
		return true, nil
	}
	return true, &Finding{
		Kind:    FindingResolution,
		Key:     r.ISIN,
		Rule:    "fuzzy-name",
		Message: fmt.Sprintf("%q matched %q with score %.2f", r.Name, match.Entry.Name, match.Score),
	}
}
