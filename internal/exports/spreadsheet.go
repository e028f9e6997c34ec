package exports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"expertcof/internal/analysis"
)

// Sheet names, in workbook order.
const (
	SheetSummary         = "Resumo"
	SheetFinancial       = "Financeiro"
	SheetRisks           = "Riscos"
	SheetRecommendations = "Recomendações"
)

// SheetOrder lists the sheets in the order they appear in every workbook.
var SheetOrder = []string{SheetSummary, SheetFinancial, SheetRisks, SheetRecommendations}

// Spreadsheet renders a Result as a four-sheet xlsx workbook.
type Spreadsheet struct {
	Clock Clock
}

// Render builds the workbook. The analysis date is the export date, not the
// upload date.
func (s Spreadsheet) Render(r analysis.Result) ([]byte, error) {
	now := s.Clock.now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range SheetOrder[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}

	// "Cláusulas Ausentes" sits after the numbered list and a blank row.
	clausesHeading, err := excelize.CoordinatesToCellName(1, len(r.Recommendations)+3)
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name   string
		rows   [][]any
		widths []float64
		styles map[string]int
	}{
		{name: SheetSummary, rows: summaryRows(r, now), widths: []float64{24, 90}, styles: map[string]int{"A1": title}},
		{name: SheetFinancial, rows: financialRows(r), widths: []float64{24, 50}, styles: map[string]int{"A1": bold, "B1": bold}},
		{name: SheetRisks, rows: riskRows(r), widths: []float64{10, 40, 90}, styles: map[string]int{"A1": bold, "B1": bold, "C1": bold}},
		{name: SheetRecommendations, rows: recommendationRows(r), widths: []float64{100}, styles: map[string]int{"A1": bold, clausesHeading: bold}},
	}

	for _, sh := range sheets {
		for i, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(sh.name, cell, &values); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", sh.name, i+1, err)
			}
		}
		for i, w := range sh.widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sh.name, col, col, w); err != nil {
				return nil, err
			}
		}
		for cell, style := range sh.styles {
			if err := f.SetCellStyle(sh.name, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryRows(r analysis.Result, now time.Time) [][]any {
	taxID := r.TaxID
	if taxID == "" {
		taxID = "N/A"
	}
	return [][]any{
		{"Relatório de Análise de Franquia - Expert COF"},
		{""},
		{"Franquia", r.FranchiseName},
		{"CNPJ", taxID},
		{"Data da Análise", now.Format("02/01/2006")},
		{"Score de Segurança", fmt.Sprintf("%d/100", r.Score)},
		{"Resumo Executivo", r.Summary},
	}
}

func financialRows(r analysis.Result) [][]any {
	rows := [][]any{{"Indicador", "Valor / Detalhe"}}
	for _, fr := range r.Financials.Rows() {
		rows = append(rows, []any{fr.Label, fr.Value})
	}
	return rows
}

func riskRows(r analysis.Result) [][]any {
	rows := make([][]any, 0, len(r.Risks)+1)
	rows = append(rows, []any{"Nível", "Risco", "Descrição"})
	for _, risk := range r.Risks {
		rows = append(rows, []any{risk.Severity.Label(), risk.Title, risk.Description})
	}
	return rows
}

func recommendationRows(r analysis.Result) [][]any {
	rows := [][]any{{"Recomendações e Próximos Passos"}}
	for i, rec := range r.Recommendations {
		rows = append(rows, []any{fmt.Sprintf("%d. %s", i+1, rec)})
	}
	rows = append(rows, []any{""}, []any{"Cláusulas Ausentes"})
	for _, clause := range r.MissingClauses {
		rows = append(rows, []any{"- " + clause})
	}
	return rows
}
