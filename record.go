package holdings

import (
	"encoding/json"
	"strings"

	"github.com/etnz/holdings/security"
	"github.com/shopspring/decimal"
)

// AssetClass is the broad category of a security, used for the asset allocation.
type AssetClass string

const (
	Equity            AssetClass = "equity"
	Bond              AssetClass = "bond"
	Fund              AssetClass = "fund"
	Cash              AssetClass = "cash"
	StructuredProduct AssetClass = "structured_product"
	OtherAsset        AssetClass = "other"
)

// SecurityRecord is one holding read from a document.
//
// Numeric fields are null when the document does not provide them or when
// they could not be parsed. Price and AcquisitionPrice are quoted the way the
// document quotes them, per 100 nominal units for bonds.
type SecurityRecord struct {
	ISIN             string
	Name             string
	Quantity         decimal.NullDecimal
	Price            decimal.NullDecimal
	AcquisitionPrice decimal.NullDecimal
	Value            decimal.NullDecimal
	Currency         string
	Maturity         string // as printed in the document
	Coupon           decimal.NullDecimal
	Weight           decimal.NullDecimal // percent of the portfolio
	AssetClass       AssetClass

	// Reference data, backfilled on resolution.
	Ticker       string
	Sector       string
	Industry     string
	SecurityType string

	SourceTable      string
	SourcePage       int
	IsValidISIN      bool
	ExtractionMethod string
}

// Key returns the identity key of the record: its ISIN when present, its
// normalized name otherwise. A record with neither has an empty key.
func (r *SecurityRecord) Key() string {
	if r.ISIN != "" {
		return r.ISIN
	}
	if n := security.NormalizeName(r.Name); n != "" {
		return "name:" + n
	}
	return ""
}

// setISIN sets the ISIN in its canonical form and revalidates it.
func (r *SecurityRecord) setISIN(isin string) {
	r.ISIN = security.NormalizeISIN(strings.TrimSpace(isin))
	r.IsValidISIN = security.IsValidISIN(r.ISIN)
}

// fill sets every null field of r from o. It reports whether a field changed.
// Identity fields are left alone: ISIN and name are owned by resolution.
func (r *SecurityRecord) fill(o *SecurityRecord) bool {
	changed := false
	str := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst, changed = v, true
		}
	}
	num := func(dst *decimal.NullDecimal, v decimal.NullDecimal) {
		if !dst.Valid && v.Valid {
			*dst, changed = v, true
		}
	}
	str(&r.Name, o.Name)
	num(&r.Quantity, o.Quantity)
	num(&r.Price, o.Price)
	num(&r.AcquisitionPrice, o.AcquisitionPrice)
	num(&r.Value, o.Value)
	str(&r.Currency, o.Currency)
	str(&r.Maturity, o.Maturity)
	num(&r.Coupon, o.Coupon)
	num(&r.Weight, o.Weight)
	if r.AssetClass == "" && o.AssetClass != "" {
		r.AssetClass, changed = o.AssetClass, true
	}
	str(&r.Ticker, o.Ticker)
	str(&r.Sector, o.Sector)
	str(&r.Industry, o.Industry)
	str(&r.SecurityType, o.SecurityType)
	str(&r.SourceTable, o.SourceTable)
	if r.SourcePage == 0 && o.SourcePage != 0 {
		r.SourcePage, changed = o.SourcePage, true
	}
	str(&r.ExtractionMethod, o.ExtractionMethod)
	return changed
}

func (r SecurityRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("isin", r.ISIN)
	w.Append("is_valid_isin", r.IsValidISIN)
	w.Optional("security_name", r.Name)
	w.Decimal("quantity", r.Quantity)
	w.Decimal("price", r.Price)
	w.Decimal("acquisition_price", r.AcquisitionPrice)
	w.Decimal("value", r.Value)
	w.Optional("currency", r.Currency)
	w.Optional("maturity", r.Maturity)
	w.Decimal("coupon", r.Coupon)
	w.Decimal("weight", r.Weight)
	w.Optional("asset_class", r.AssetClass)
	w.Optional("ticker", r.Ticker)
	w.Optional("sector", r.Sector)
	w.Optional("industry", r.Industry)
	w.Optional("security_type", r.SecurityType)
	w.Optional("source_table_id", r.SourceTable)
	w.Optional("source_page", r.SourcePage)
	w.Optional("extraction_method", r.ExtractionMethod)
	return w.MarshalJSON()
}

// jrecord is the decoding form of SecurityRecord.
type jrecord struct {
	ISIN             string              `json:"isin"`
	Name             string              `json:"security_name"`
	Quantity         decimal.NullDecimal `json:"quantity"`
	Price            decimal.NullDecimal `json:"price"`
	AcquisitionPrice decimal.NullDecimal `json:"acquisition_price"`
	Value            decimal.NullDecimal `json:"value"`
	Currency         string              `json:"currency"`
	Maturity         string              `json:"maturity"`
	Coupon           decimal.NullDecimal `json:"coupon"`
	Weight           decimal.NullDecimal `json:"weight"`
	AssetClass       AssetClass          `json:"asset_class"`
	Ticker           string              `json:"ticker"`
	Sector           string              `json:"sector"`
	Industry         string              `json:"industry"`
	SecurityType     string              `json:"security_type"`
	SourceTable      string              `json:"source_table_id"`
	SourcePage       int                 `json:"source_page"`
	IsValidISIN      bool                `json:"is_valid_isin"`
	ExtractionMethod string              `json:"extraction_method"`
}

func (r *SecurityRecord) UnmarshalJSON(data []byte) error {
	var j jrecord
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = SecurityRecord(j)
	// the validity flag is recomputed, never trusted
	r.IsValidISIN = r.ISIN != "" && security.IsValidISIN(r.ISIN)
	return nil
}
