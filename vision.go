package holdings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoVisionJSON is returned when a vision answer holds no usable JSON object.
var ErrNoVisionJSON = errors.New("no JSON object in vision answer")

// VisionService is a vision-capable model asked to read the portfolio totals
// from rendered page images. Its answer is free-form text expected to contain JSON.
type VisionService interface {
	Describe(ctx context.Context, prompt string, pages []image.Image) (string, error)
}

// VisionPrompt is the question asked to the VisionService.
const VisionPrompt = `These images are the pages of a portfolio statement.
Answer with a single JSON object, in a fenced json code block, with the fields:
  "total_value": the total value of the portfolio as a number,
  "currency": the ISO code of the reference currency,
  "asset_allocation": an object mapping each asset class (equity, bond, fund, cash, structured_product, other) to {"value": number, "weight": percent}.
Use null for anything not printed in the document.`

// VisionReport is what could be read from a vision answer.
type VisionReport struct {
	TotalValue      decimal.NullDecimal
	Currency        string
	AssetAllocation map[AssetClass]Allocation
}

// ParseVisionAnswer reads the JSON object of a vision answer: the first
// fenced code block that decodes as an object, or else the first balanced
// {...} in the text. Fields are read with JSONPath, numbers may be JSON
// numbers or strings as printed in a statement.
func ParseVisionAnswer(answer string) (VisionReport, error) {
	obj, err := visionJSON(answer)
	if err != nil {
		return VisionReport{}, err
	}
	var rep VisionReport
	if v, err := jsonpath.Get("$.total_value", obj); err == nil {
		rep.TotalValue = jsonNumber(v)
	}
	if v, err := jsonpath.Get("$.currency", obj); err == nil {
		if s, ok := v.(string); ok && IsCurrencyCode(strings.ToUpper(s)) {
			rep.Currency = strings.ToUpper(s)
		}
	}
	if v, err := jsonpath.Get("$.asset_allocation", obj); err == nil {
		if m, ok := v.(map[string]any); ok {
			rep.AssetAllocation = make(map[AssetClass]Allocation)
			for k, a := range m {
				var alloc Allocation
				if val, err := jsonpath.Get("$.value", a); err == nil {
					alloc.Value = jsonNumber(val).Decimal
				}
				if w, err := jsonpath.Get("$.weight", a); err == nil {
					alloc.Weight = jsonNumber(w).Decimal
				}
				rep.AssetAllocation[AssetClass(strings.ToLower(k))] = alloc
			}
		}
	}
	return rep, nil
}

// visionJSON returns the decoded JSON object of an answer.
func visionJSON(answer string) (any, error) {
	src := []byte(answer)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	var blocks []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			var b strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				b.Write(line.Value(src))
			}
			blocks = append(blocks, b.String())
		}
		return ast.WalkContinue, nil
	})
	if s := balancedObject(answer); s != "" {
		blocks = append(blocks, s)
	}
	for _, b := range blocks {
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(b)), &obj); err == nil {
			return obj, nil
		}
	}
	return nil, ErrNoVisionJSON
}

// balancedObject returns the first brace-balanced {...} of s, "" if none.
// Braces inside JSON strings are ignored.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// jsonNumber converts a decoded JSON value to a decimal.
func jsonNumber(v any) decimal.NullDecimal {
	switch x := v.(type) {
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	case string:
		return parseNull(x)
	case []any:
		// jsonpath may wrap a single answer in a list
		if len(x) > 0 {
			return jsonNumber(x[0])
		}
	}
	return decimal.NullDecimal{}
}

// DefaultVisionTolerance is the relative disagreement on the total value
// above which a corroboration finding is raised.
var DefaultVisionTolerance = decimal.RequireFromString("0.01")

// Corroborate compares the summary with a vision report. The vision report is
// never the sole source of truth: it only provides the total when the
// document declared none and no value could be summed, and otherwise raises
// a finding when it disagrees by more than tolerance.
func Corroborate(s *PortfolioSummary, rep VisionReport, tolerance decimal.Decimal) []Finding {
	if !rep.TotalValue.Valid {
		return nil
	}
	if !s.TotalValue.Valid {
		s.TotalValue, s.TotalSource = rep.TotalValue, TotalVision
		if s.Currency == "" {
			s.Currency = rep.Currency
		}
		return []Finding{{
			Kind:    FindingCorroboration,
			Rule:    "vision-total",
			Field:   "total_value",
			Actual:  rep.TotalValue,
			Message: "total value taken from the vision service",
		}}
	}
	gap := relativeGap(rep.TotalValue.Decimal, s.TotalValue.Decimal)
	if gap.LessThanOrEqual(tolerance) {
		return nil
	}
	return []Finding{{
		Kind:     FindingCorroboration,
		Rule:     "vision-total",
		Field:    "total_value",
		Expected: rep.TotalValue,
		Actual:   s.TotalValue,
		Message:  fmt.Sprintf("vision service reads a total of %s, %s%% off the %s total", rep.TotalValue.Decimal, gap.Mul(hundred).StringFixed(1), s.TotalSource),
	}}
}
