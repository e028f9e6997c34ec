package exports

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"expertcof/internal/analysis"
)

const (
	pageMargin = 14.0
	lineHeight = 5.0
	// Recommendations start on a fresh page when the cursor is past this y (mm).
	recommendationBreakY = 250.0

	footerText = "Gerado por Expert COF - www.expertcof.com.br"
	fontFamily = "DejaVu"
)

var (
	brandBlue = analysis.RGB{R: 30, G: 64, B: 175}
	riskRed   = analysis.RGB{R: 220, G: 38, B: 38}
	textGrey  = analysis.RGB{R: 50, G: 50, B: 50}
	mutedGrey = analysis.RGB{R: 100, G: 100, B: 100}
	black     = analysis.RGB{}
)

// Document renders a Result as a paginated A4 PDF report.
type Document struct {
	Clock Clock
	// Compress enables stream compression. Disabled output keeps text
	// operators readable, which tests rely on.
	Compress bool
}

type blockKind int

const (
	blockTitle blockKind = iota
	blockCaption
	blockRule
	blockLine
	blockScore
	blockHeading
	blockParagraph
	blockTable
	blockBullet
	blockPageCheck
)

// block is one element of the report in layout order.
type block struct {
	kind      blockKind
	text      string
	label     string
	size      float64
	color     analysis.RGB
	header    []string
	rows      [][]string
	widths    []float64
	headFill  analysis.RGB
	boldCols  map[int]bool
	threshold float64
}

type layout []block

// Text is every string the report prints, one per line.
func (l layout) Text() string {
	var sb strings.Builder
	for _, b := range l {
		for _, s := range append([]string{b.label, b.text}, b.header...) {
			if s != "" {
				sb.WriteString(s)
				sb.WriteByte('\n')
			}
		}
		for _, row := range b.rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// inBMP replaces runes above U+FFFF, which the font width tables cannot
// index, with U+FFFD.
func (l layout) inBMP() layout {
	out := make(layout, len(l))
	for i, b := range l {
		b.text = bmpOnly(b.text)
		b.label = bmpOnly(b.label)
		if b.rows != nil {
			rows := make([][]string, len(b.rows))
			for j, row := range b.rows {
				rows[j] = make([]string, len(row))
				for k, cell := range row {
					rows[j][k] = bmpOnly(cell)
				}
			}
			b.rows = rows
		}
		out[i] = b
	}
	return out
}

func bmpOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}

func documentLayout(r analysis.Result, now time.Time) layout {
	name := r.FranchiseName
	if name == "" {
		name = "Não identificada"
	}

	l := layout{
		{kind: blockTitle, text: "Expert COF - Relatório de Análise", size: 22, color: brandBlue},
		{kind: blockCaption, text: fmt.Sprintf("Gerado em: %s às %s", now.Format("02/01/2006"), now.Format("15:04:05")), size: 10, color: mutedGrey},
		{kind: blockRule},
		{kind: blockLine, text: "Franquia: " + name, size: 14, color: black},
	}
	if r.TaxID != "" {
		l = append(l, block{kind: blockLine, text: "CNPJ: " + r.TaxID, size: 11, color: analysis.RGB{R: 80, G: 80, B: 80}})
	}
	l = append(l,
		block{kind: blockScore, label: "Score de Segurança:", text: fmt.Sprintf("%d/100", r.Score), size: 14, color: r.Band().Color()},
		block{kind: blockHeading, text: "Resumo Executivo"},
		block{kind: blockParagraph, text: r.Summary},
	)

	financial := make([][]string, 0, 6)
	for _, fr := range r.Financials.Rows() {
		financial = append(financial, []string{fr.Label, analysis.OrPlaceholder(fr.Value)})
	}
	l = append(l,
		block{kind: blockHeading, text: "Dados Financeiros"},
		block{kind: blockTable, header: []string{"Item", "Valor"}, rows: financial, widths: []float64{60, 122}, headFill: brandBlue},
	)

	risks := make([][]string, 0, len(r.Risks))
	for _, risk := range r.Risks {
		risks = append(risks, []string{risk.Severity.Label(), risk.Title, risk.Description})
	}
	l = append(l,
		block{kind: blockHeading, text: "Pontos de Atenção e Riscos"},
		block{kind: blockTable, header: []string{"Nível", "Risco", "Descrição"}, rows: risks, widths: []float64{25, 45, 112}, headFill: riskRed, boldCols: map[int]bool{0: true, 1: true}},
		block{kind: blockPageCheck, threshold: recommendationBreakY},
		block{kind: blockHeading, text: "Recomendações"},
	)
	for _, rec := range r.Recommendations {
		l = append(l, block{kind: blockBullet, text: "• " + rec})
	}
	return l
}

// Render lays out and encodes the report.
func (d Document) Render(r analysis.Result) ([]byte, error) {
	now := d.Clock.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, 20, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCompression(d.Compress)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("Expert COF - Relatório de Análise", true)
	pdf.SetCreator("Expert COF", true)
	pdf.AliasNbPages("")
	registerFonts(pdf)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 4, footerText, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, fmt.Sprintf("Página %d de {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, b := range documentLayout(r, now).inBMP() {
		drawBlock(pdf, b)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBlock(pdf *fpdf.Fpdf, b block) {
	pageW, _ := pdf.GetPageSize()
	switch b.kind {
	case blockTitle:
		setText(pdf, "B", b.size, b.color)
		pdf.CellFormat(0, 10, b.text, "", 1, "L", false, 0, "")
	case blockCaption:
		setText(pdf, "", b.size, b.color)
		pdf.CellFormat(0, 5, b.text, "", 1, "L", false, 0, "")
	case blockRule:
		y := pdf.GetY() + 2
		pdf.SetLineWidth(0.5)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(pageMargin, y, pageW-pageMargin, y)
		pdf.SetY(y + 6)
	case blockLine:
		setText(pdf, "", b.size, b.color)
		pdf.CellFormat(0, 8, b.text, "", 1, "L", false, 0, "")
	case blockScore:
		setText(pdf, "", 12, black)
		pdf.CellFormat(46, 8, b.label, "", 0, "L", false, 0, "")
		setText(pdf, "B", b.size, b.color)
		pdf.CellFormat(0, 8, b.text, "", 1, "L", false, 0, "")
		pdf.Ln(4)
	case blockHeading:
		setText(pdf, "B", 12, brandBlue)
		pdf.CellFormat(0, 7, b.text, "", 1, "L", false, 0, "")
	case blockParagraph:
		setText(pdf, "", 10, textGrey)
		pdf.MultiCell(0, lineHeight, b.text, "", "L", false)
		pdf.Ln(6)
	case blockTable:
		drawTable(pdf, b)
	case blockBullet:
		setText(pdf, "", 10, textGrey)
		pdf.MultiCell(0, lineHeight, b.text, "", "L", false)
		pdf.Ln(2)
	case blockPageCheck:
		if pdf.GetY() > b.threshold {
			pdf.AddPage()
		}
	}
}

func drawTable(pdf *fpdf.Fpdf, b block) {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	header := func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetFillColor(b.headFill.R, b.headFill.G, b.headFill.B)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(180, 180, 180)
		pdf.SetLineWidth(0.2)
		for i, h := range b.header {
			pdf.CellFormat(b.widths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	cellFont := func(col int) {
		style := ""
		if b.boldCols[col] {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 9)
		pdf.SetTextColor(0, 0, 0)
	}

	header()
	for _, row := range b.rows {
		lines := 1
		for i, cell := range row {
			cellFont(i)
			if n := len(pdf.SplitText(cell, b.widths[i]-2)); n > lines {
				lines = n
			}
		}
		h := float64(lines)*lineHeight + 2

		// Rows never split across pages; the header repeats on the new page.
		if pdf.GetY()+h > pageH-bottom {
			pdf.AddPage()
			header()
		}

		x, y := pdf.GetXY()
		left := x
		for i, cell := range row {
			w := b.widths[i]
			cellFont(i)
			pdf.Rect(x, y, w, h, "D")
			pdf.SetXY(x+1, y+1)
			pdf.MultiCell(w-2, lineHeight, cell, "", "L", false)
			x += w
		}
		pdf.SetXY(left, y+h)
	}
	pdf.Ln(8)
}

func setText(pdf *fpdf.Fpdf, style string, size float64, c analysis.RGB) {
	pdf.SetFont(fontFamily, style, size)
	pdf.SetTextColor(c.R, c.G, c.B)
}
