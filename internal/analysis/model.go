package analysis

// Severity grades a single risk item.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// RiskItem is one risk raised by the analysis, kept in the order received.
type RiskItem struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// FinancialData holds the six display strings extracted from the document.
// Values are free-form text, never parsed as numbers.
type FinancialData struct {
	InitialInvestment string `json:"initial_investment"`
	FranchiseFee      string `json:"franchise_fee"`
	Royalties         string `json:"royalties"`
	AdvertisingFund   string `json:"advertising_fund"`
	PaybackPeriod     string `json:"payback_period"`
	Profitability     string `json:"profitability"`
}

// Result is one completed analysis. Values produced by Decode or Normalize
// are total: slices are non-nil and Score is within [0,100].
type Result struct {
	ID              string        `json:"id,omitempty"`
	Filename        string        `json:"filename"`
	FranchiseName   string        `json:"franchise_name,omitempty"`
	TaxID           string        `json:"cnpj,omitempty"`
	UploadDate      string        `json:"uploadDate"`
	Score           int           `json:"score"`
	Summary         string        `json:"summary"`
	Financials      FinancialData `json:"financials"`
	Risks           []RiskItem    `json:"risks"`
	MissingClauses  []string      `json:"missingClauses"`
	Recommendations []string      `json:"recommendations"`
	FromCache       bool          `json:"from_cache,omitempty"`
}

// Band returns the score band of the result.
func (r Result) Band() Band {
	return BandFor(r.Score)
}

// RisksBySeverity returns the risks with severity s, in original order.
func (r Result) RisksBySeverity(s Severity) []RiskItem {
	var out []RiskItem
	for _, risk := range r.Risks {
		if risk.Severity == s {
			out = append(out, risk)
		}
	}
	return out
}

// DisplayName is the label used in lists and exports when a name is needed.
func (r Result) DisplayName() string {
	if r.FranchiseName != "" {
		return r.FranchiseName
	}
	return r.Filename
}
