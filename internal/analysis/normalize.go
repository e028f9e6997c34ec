package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a payload that is not a JSON object.
var ErrMalformed = errors.New("malformed analysis payload")

// Decode parses backend JSON into a total Result. Missing or mistyped fields
// take their defaults; only a non-object payload is an error.
func Decode(data []byte) (Result, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Normalize(nil), ErrMalformed
	}
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Normalize(nil), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Normalize(raw), nil
}

// Normalize builds a Result from a loosely typed object. Both the upload
// response (snake_case metadata) and camelCase variants are accepted.
func Normalize(raw map[string]any) Result {
	res := Result{
		ID:              str(raw, "id"),
		Filename:        str(raw, "filename"),
		FranchiseName:   str(raw, "franchise_name", "franchiseName"),
		TaxID:           str(raw, "cnpj", "taxId"),
		UploadDate:      str(raw, "uploadDate", "upload_date", "created_at"),
		Score:           score(raw["score"]),
		Summary:         str(raw, "summary"),
		Financials:      financials(raw["financials"]),
		Risks:           risks(raw["risks"]),
		MissingClauses:  strList(raw, "missingClauses", "missing_clauses"),
		Recommendations: strList(raw, "recommendations"),
		FromCache:       boolean(raw["from_cache"]) || boolean(raw["fromCache"]),
	}
	if res.TaxID == "" {
		if extracted, ok := raw["extracted_data"].(map[string]any); ok {
			res.TaxID = str(extracted, "cnpj")
		}
	}
	return res
}

// ClampScore bounds a score to [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func score(v any) int {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return ClampScore(int(math.Round(f)))
	case float64:
		return ClampScore(int(math.Round(n)))
	case int:
		return ClampScore(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return ClampScore(int(math.Round(f)))
	default:
		return 0
	}
}

func financials(v any) FinancialData {
	m, ok := v.(map[string]any)
	if !ok {
		return FinancialData{}
	}
	return FinancialData{
		InitialInvestment: str(m, "initial_investment", "initialInvestment"),
		FranchiseFee:      str(m, "franchise_fee", "franchiseFee"),
		Royalties:         str(m, "royalties"),
		AdvertisingFund:   str(m, "advertising_fund", "advertisingFund"),
		PaybackPeriod:     str(m, "payback_period", "paybackPeriod"),
		Profitability:     str(m, "profitability"),
	}
}

func risks(v any) []RiskItem {
	items, ok := v.([]any)
	if !ok {
		return []RiskItem{}
	}
	out := make([]RiskItem, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, RiskItem{
			Severity:    ParseSeverity(str(m, "severity")),
			Title:       str(m, "title"),
			Description: str(m, "description"),
		})
	}
	return out
}

// str returns the first non-empty value among keys, rendered as text.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func strList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		items, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}
