package security

import (
	"errors"
	"testing"
)

func TestValidateISIN(t *testing.T) {
	tests := []struct {
		name  string
		isin  string
		valid bool
	}{
		{"Apple", "US0378331005", true},
		{"Apple altered check digit", "US0378331006", false},
		{"Nestle", "CH0038863350", true},
		{"letters in body", "US02079K3059", true},
		{"Irish ETF", "IE00B4L5Y983", true},
		{"too short", "US037833100", false},
		{"too long", "US03783310055", false},
		{"lowercase country", "us0378331005", false},
		{"digit country", "1S0378331005", false},
		{"punctuation in body", "US03783-1005", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidISIN(tc.isin); got != tc.valid {
				t.Errorf("IsValidISIN(%q) = %v, want %v", tc.isin, got, tc.valid)
			}
			err := ValidateISIN(tc.isin)
			if tc.valid != (err == nil) {
				t.Errorf("ValidateISIN(%q) = %v, want valid=%v", tc.isin, err, tc.valid)
			}
			if err != nil && !errors.Is(err, ErrInvalidISIN) {
				t.Errorf("ValidateISIN(%q) error %v does not wrap ErrInvalidISIN", tc.isin, err)
			}
		})
	}
}

func TestNormalizeAndFindISIN(t *testing.T) {
	if got := NormalizeISIN("us 037833 1005"); got != "US0378331005" {
		t.Errorf("NormalizeISIN() = %q, want %q", got, "US0378331005")
	}
	if !LooksLikeISIN("US0378331006") {
		t.Errorf("LooksLikeISIN() must ignore the check digit")
	}
	if LooksLikeISIN("Apple Inc") {
		t.Errorf("LooksLikeISIN(%q) = true", "Apple Inc")
	}

	tests := []struct{ text, want string }{
		{"APPLE INC ISIN US0378331005 REG SHS", "US0378331005"},
		{"bad US0378331006 then good CH0038863350", "CH0038863350"},
		{"only shaped US0378331006", "US0378331006"},
		{"nothing here", ""},
	}
	for _, tc := range tests {
		if got := FindISIN(tc.text); got != tc.want {
			t.Errorf("FindISIN(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestCrossIdentifiers(t *testing.T) {
	if err := ValidateCUSIP("037833100"); err != nil {
		t.Errorf("ValidateCUSIP(Apple) = %v", err)
	}
	if err := ValidateCUSIP("037833101"); err == nil {
		t.Errorf("ValidateCUSIP() accepted a wrong check digit")
	}
	if err := ValidateSEDOL("0287580"); err != nil {
		t.Errorf("ValidateSEDOL(BAT) = %v", err)
	}
	if err := ValidateSEDOL("0287581"); err == nil {
		t.Errorf("ValidateSEDOL() accepted a wrong check digit")
	}

	isin, err := ISINFromCUSIP("us", "037833100")
	if err != nil || isin != "US0378331005" {
		t.Errorf("ISINFromCUSIP() = %q, %v, want US0378331005", isin, err)
	}
	isin, err = ISINFromSEDOL("GB", "0287580")
	if err != nil || isin != "GB0002875804" {
		t.Errorf("ISINFromSEDOL() = %q, %v, want GB0002875804", isin, err)
	}
	if _, err := ISINFromSEDOL("US", "0287580"); err == nil {
		t.Errorf("ISINFromSEDOL() accepted a non GB/IE country")
	}
}
