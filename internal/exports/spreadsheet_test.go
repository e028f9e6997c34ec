package exports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"expertcof/internal/analysis"
)

var fixedNow = time.Date(2026, 3, 1, 14, 30, 5, 0, time.UTC)

func fixedClock() Clock {
	return Clock{Now: func() time.Time { return fixedNow }, Location: time.UTC}
}

func sampleResult() analysis.Result {
	return analysis.Result{
		ID:            "a1",
		Filename:      "cof.pdf",
		FranchiseName: "Example Co",
		TaxID:         "12.345.678/0001-90",
		Score:         72,
		Summary:       "Contrato com pontos de atenção.",
		Financials: analysis.FinancialData{
			InitialInvestment: "R$ 150.000",
			Royalties:         "6% do faturamento",
		},
		Risks: []analysis.RiskItem{
			{Severity: analysis.SeverityHigh, Title: "Early-termination penalty", Description: "Multa de 50% sobre o saldo."},
			{Severity: analysis.SeverityLow, Title: "Foro", Description: "Foro na sede da franqueadora."},
			{Severity: analysis.SeverityMedium, Title: "Exclusividade", Description: "Território não definido."},
		},
		MissingClauses:  []string{"Sucessão", "Arbitragem"},
		Recommendations: []string{"Consultar advogado", "Negociar multa"},
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestSpreadsheetSheetsInOrder(t *testing.T) {
	data, err := Spreadsheet{Clock: fixedClock()}.Render(sampleResult())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := openWorkbook(t, data)
	if diff := cmp.Diff(SheetOrder, f.GetSheetList()); diff != "" {
		t.Fatalf("sheet order mismatch (-want +got):\n%s", diff)
	}
}

func TestSpreadsheetRiskRowsKeepOrder(t *testing.T) {
	res := sampleResult()
	data, err := Spreadsheet{Clock: fixedClock()}.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rows, err := openWorkbook(t, data).GetRows(SheetRisks)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(res.Risks)+1 {
		t.Fatalf("expected %d rows, got %d", len(res.Risks)+1, len(rows))
	}
	want := [][]string{
		{"Nível", "Risco", "Descrição"},
		{"ALTO", "Early-termination penalty", "Multa de 50% sobre o saldo."},
		{"BAIXO", "Foro", "Foro na sede da franqueadora."},
		{"MÉDIO", "Exclusividade", "Território não definido."},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("risk rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSpreadsheetSummaryAndRecommendations(t *testing.T) {
	res := sampleResult()
	res.TaxID = ""
	data, err := Spreadsheet{Clock: fixedClock()}.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := openWorkbook(t, data)

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if got := summary[3]; len(got) != 2 || got[1] != "N/A" {
		t.Fatalf("expected N/A tax id row, got %v", got)
	}
	if got := summary[4][1]; got != "01/03/2026" {
		t.Fatalf("expected export date, got %q", got)
	}
	if got := summary[5][1]; got != "72/100" {
		t.Fatalf("expected score text, got %q", got)
	}

	recs, err := f.GetRows(SheetRecommendations)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	var flat []string
	for _, row := range recs {
		flat = append(flat, strings.Join(row, ""))
	}
	want := []string{
		"Recomendações e Próximos Passos",
		"1. Consultar advogado",
		"2. Negociar multa",
		"",
		"Cláusulas Ausentes",
		"- Sucessão",
		"- Arbitragem",
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestSpreadsheetFinancialPlaceholders(t *testing.T) {
	data, err := Spreadsheet{Clock: fixedClock()}.Render(sampleResult())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rows, err := openWorkbook(t, data).GetRows(SheetFinancial)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected header plus six rows, got %d", len(rows))
	}
	if rows[1][0] != "Investimento Inicial" || rows[3][0] != "Royalties" {
		t.Fatalf("unexpected financial order: %v", rows)
	}
}

func TestSpreadsheetRenderIsRepeatable(t *testing.T) {
	exp := Spreadsheet{Clock: fixedClock()}
	res := sampleResult()

	first, err := exp.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := exp.Render(res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	a, b := openWorkbook(t, first), openWorkbook(t, second)
	for _, sheet := range SheetOrder {
		ra, _ := a.GetRows(sheet)
		rb, _ := b.GetRows(sheet)
		if diff := cmp.Diff(ra, rb); diff != "" {
			t.Fatalf("sheet %s differs between renders:\n%s", sheet, diff)
		}
	}
}

func TestFileNames(t *testing.T) {
	res := sampleResult()
	res.FranchiseName = "Café  do   Ponto"
	if got := SpreadsheetFileName(res, fixedNow); got != "Analise_COF_Café_do_Ponto_2026-03-01.xlsx" {
		t.Fatalf("unexpected spreadsheet name %q", got)
	}
	if got := DocumentFileName(res); got != "Analise_ExpertCOF_Café  do   Ponto.pdf" {
		t.Fatalf("unexpected document name %q", got)
	}

	res.FranchiseName = ""
	if got := SpreadsheetFileName(res, fixedNow); got != "Analise_COF_Franquia_2026-03-01.xlsx" {
		t.Fatalf("unexpected fallback spreadsheet name %q", got)
	}
	if got := DocumentFileName(res); got != "Analise_ExpertCOF_Franquia.pdf" {
		t.Fatalf("unexpected fallback document name %q", got)
	}
}
