package compare

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
)

// Row labels, top to bottom.
const (
	LabelCriterion  = "Critério"
	LabelScore      = "Score"
	LabelFinancial  = "Financeiro"
	LabelHighRisks  = "Riscos Altos"
	LabelMedRisks   = "Riscos Médios"
	LabelCompliance = "Conformidade"
	LabelClauses    = "Cláusulas Ausentes"
)

const (
	EmptyTitle   = "Nenhuma análise selecionada"
	EmptyMessage = "Selecione pelo menos duas franquias no Dashboard para comparar."

	NoHighRisks     = "Nenhum risco alto"
	ClausesComplete = "Completa"

	clauseChipRunes = 20
	mediumPreview   = 3
)

// Column is one analysis in the comparison table.
type Column struct {
	Position      int                     `json:"position"`
	ID            string                  `json:"id"`
	FranchiseName string                  `json:"franchiseName"`
	Score         string                  `json:"score"`
	Band          analysis.Band           `json:"band,omitempty"`
	Financials    []analysis.FinancialRow `json:"financials"`
	HighRisks     []string                `json:"highRisks"`
	MediumCount   int                     `json:"mediumCount"`
	MediumLabel   string                  `json:"mediumLabel"`
	MediumPreview []string                `json:"mediumPreview"`
	MediumMore    string                  `json:"mediumMore,omitempty"`
	Clauses       []string                `json:"missingClauses"`
}

// HighRisksText is the high-risk cell as a single line of text.
func (c Column) HighRisksText() string {
	if len(c.HighRisks) == 0 {
		return NoHighRisks
	}
	return strings.Join(c.HighRisks, "; ")
}

// ClausesText is the missing-clause cell as a single line of text.
func (c Column) ClausesText() string {
	if len(c.Clauses) == 0 {
		return ClausesComplete
	}
	return strings.Join(c.Clauses, ", ")
}

// Comparison is the assembled table, or its empty state.
type Comparison struct {
	Empty   bool     `json:"empty"`
	Title   string   `json:"title,omitempty"`
	Message string   `json:"message,omitempty"`
	Columns []Column `json:"columns"`
	// Missing lists requested ids the store did not return, then ids past
	// MaxSelection.
	Missing []string `json:"missing,omitempty"`
}

func emptyComparison(missing []string) Comparison {
	return Comparison{Empty: true, Title: EmptyTitle, Message: EmptyMessage, Columns: []Column{}, Missing: missing}
}

// Assembler batch-loads analyses and lays them out for side-by-side display.
type Assembler struct {
	Repo analyses.Repo
}

// NewAssembler constructs an Assembler.
func NewAssembler(repo analyses.Repo) *Assembler {
	return &Assembler{Repo: repo}
}

// Assemble loads ids in one call and returns columns in the order the ids
// were given. Fewer than two distinct ids yields the empty state without
// touching the store. At most MaxSelection columns are built; distinct ids
// past that are not loaded and are listed in Missing.
func (a *Assembler) Assemble(ctx context.Context, ids []string) (Comparison, error) {
	return a.AssembleFor(ctx, "", ids)
}

// AssembleFor is Assemble restricted to userID's records; others count as
// missing. An empty userID disables the check.
func (a *Assembler) AssembleFor(ctx context.Context, userID string, ids []string) (Comparison, error) {
	var (
		sel      Selection
		overflow []string
	)
	for _, id := range ids {
		if !sel.Add(id) && id != "" && !sel.Contains(id) && !contains(overflow, id) {
			overflow = append(overflow, id)
		}
	}
	if !sel.CanCompare() {
		return emptyComparison(nil), nil
	}

	recs, err := a.Repo.GetByIDs(ctx, sel.IDs())
	if err != nil {
		return Comparison{}, fmt.Errorf("load comparison: %w", err)
	}
	byID := make(map[string]analyses.Record, len(recs))
	for _, rec := range recs {
		if userID != "" && rec.UserID != "" && rec.UserID != userID {
			continue
		}
		byID[rec.ID] = rec
	}

	cmp := Comparison{Columns: []Column{}}
	for _, id := range sel.IDs() {
		rec, ok := byID[id]
		if !ok {
			cmp.Missing = append(cmp.Missing, id)
			continue
		}
		col := column(rec)
		col.Position = len(cmp.Columns) + 1
		cmp.Columns = append(cmp.Columns, col)
	}
	cmp.Missing = append(cmp.Missing, overflow...)
	if len(cmp.Columns) == 0 {
		return emptyComparison(cmp.Missing), nil
	}
	return cmp, nil
}

func column(rec analyses.Record) Column {
	res := rec.Result()
	col := Column{
		ID:            rec.ID,
		FranchiseName: rec.FranchiseName,
		Score:         analysis.Placeholder,
		HighRisks:     []string{},
		MediumPreview: []string{},
		Clauses:       []string{},
	}
	if col.FranchiseName == "" {
		col.FranchiseName = res.DisplayName()
	}
	if rec.PayloadValid() {
		col.Score = strconv.Itoa(res.Score) + "/100"
		col.Band = res.Band()
	}

	for _, row := range res.Financials.CompactRows() {
		row.Value = analysis.OrPlaceholder(row.Value)
		col.Financials = append(col.Financials, row)
	}

	for _, risk := range res.RisksBySeverity(analysis.SeverityHigh) {
		col.HighRisks = append(col.HighRisks, risk.Title)
	}

	medium := res.RisksBySeverity(analysis.SeverityMedium)
	col.MediumCount = len(medium)
	col.MediumLabel = fmt.Sprintf("%d Identificados", len(medium))
	for i, risk := range medium {
		if i == mediumPreview {
			col.MediumMore = fmt.Sprintf("+ %d outros", len(medium)-mediumPreview)
			break
		}
		col.MediumPreview = append(col.MediumPreview, risk.Title)
	}

	for _, clause := range res.MissingClauses {
		col.Clauses = append(col.Clauses, truncateRunes(clause, clauseChipRunes))
	}
	return col
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
