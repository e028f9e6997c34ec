package analysis

import "strings"

// ParseSeverity maps upstream text to a Severity. Anything unrecognised is
// treated as low so it still lands in a display group.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "alto", "alta":
		return SeverityHigh
	case "medium", "médio", "medio", "média", "media":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Label is the uppercase pt-BR label used in exports.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "ALTO"
	case SeverityMedium:
		return "MÉDIO"
	default:
		return "BAIXO"
	}
}

// FinancialRow is one label/value pair of FinancialData.
type FinancialRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rows lists the financial fields in their fixed order using the long labels
// of the exported documents.
func (f FinancialData) Rows() []FinancialRow {
	return []FinancialRow{
		{Label: "Investimento Inicial", Value: f.InitialInvestment},
		{Label: "Taxa de Franquia", Value: f.FranchiseFee},
		{Label: "Royalties", Value: f.Royalties},
		{Label: "Fundo de Propaganda", Value: f.AdvertisingFund},
		{Label: "Payback Estimado", Value: f.PaybackPeriod},
		{Label: "Rentabilidade", Value: f.Profitability},
	}
}

// CompactRows is Rows with the shorter labels used by the comparison table.
func (f FinancialData) CompactRows() []FinancialRow {
	rows := f.Rows()
	rows[3].Label = "Fundo Propaganda"
	rows[4].Label = "Payback"
	return rows
}

// IsEmpty reports whether no financial field carries a value.
func (f FinancialData) IsEmpty() bool {
	return f == FinancialData{}
}

// Placeholder is shown wherever a value is absent.
const Placeholder = "-"

// OrPlaceholder returns v, or Placeholder when v is blank.
func OrPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}
