package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"expertcof/internal/analysis"
	"expertcof/internal/compare"
	"expertcof/internal/history"
	"expertcof/internal/preferences"
	"expertcof/internal/usage"
	"expertcof/internal/users"
)

// palette holds the colours for one theme. Dark terminals get the bright
// variants.
type palette struct {
	good     *color.Color
	moderate *color.Color
	poor     *color.Color
	heading  *color.Color
	muted    *color.Color
}

func paletteFor(t preferences.Theme) palette {
	if t == preferences.ThemeDark {
		return palette{
			good:     color.New(color.FgHiGreen, color.Bold),
			moderate: color.New(color.FgHiYellow, color.Bold),
			poor:     color.New(color.FgHiRed, color.Bold),
			heading:  color.New(color.FgHiCyan, color.Bold),
			muted:    color.New(color.FgHiBlack),
		}
	}
	return palette{
		good:     color.New(color.FgGreen, color.Bold),
		moderate: color.New(color.FgYellow, color.Bold),
		poor:     color.New(color.FgRed, color.Bold),
		heading:  color.New(color.FgBlue, color.Bold),
		muted:    color.New(color.FgHiBlack),
	}
}

func (p palette) band(b analysis.Band) *color.Color {
	switch b {
	case analysis.BandGood:
		return p.good
	case analysis.BandModerate:
		return p.moderate
	case analysis.BandPoor:
		return p.poor
	default:
		return p.muted
	}
}

func (p palette) result(w io.Writer, r analysis.Result) {
	p.heading.Fprintln(w, r.DisplayName())
	if r.TaxID != "" {
		fmt.Fprintf(w, "CNPJ: %s\n", r.TaxID)
	}
	fmt.Fprint(w, "Score de Segurança: ")
	p.band(r.Band()).Fprintf(w, "%d/100 (%s)\n", r.Score, r.Band().Label())
	if r.FromCache {
		p.muted.Fprintln(w, "Resultado recuperado do cache.")
	}

	if r.Summary != "" {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, "Resumo Executivo")
		fmt.Fprintln(w, r.Summary)
	}

	fmt.Fprintln(w)
	p.heading.Fprintln(w, "Dados Financeiros")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range r.Financials.Rows() {
		fmt.Fprintf(tw, "  %s\t%s\n", row.Label, analysis.OrPlaceholder(row.Value))
	}
	tw.Flush()

	if len(r.Risks) > 0 {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, "Pontos de Atenção e Riscos")
		for _, risk := range r.Risks {
			c := p.muted
			switch risk.Severity {
			case analysis.SeverityHigh:
				c = p.poor
			case analysis.SeverityMedium:
				c = p.moderate
			}
			c.Fprintf(w, "  [%s] ", risk.Severity.Label())
			fmt.Fprintln(w, risk.Title)
			if risk.Description != "" {
				fmt.Fprintf(w, "         %s\n", risk.Description)
			}
		}
	}

	if len(r.MissingClauses) > 0 {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, "Cláusulas Ausentes")
		for _, clause := range r.MissingClauses {
			fmt.Fprintf(w, "  - %s\n", clause)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w)
		p.heading.Fprintln(w, "Recomendações")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  • %s\n", rec)
		}
	}
}

func (p palette) listing(w io.Writer, l history.Listing) {
	if l.Empty {
		p.muted.Fprintln(w, l.Message)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tFRANQUIA\tDATA\tSCORE\tRISCOS ALTOS")
	for _, it := range l.Items {
		mark := " "
		if it.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			mark,
			it.ID,
			it.FranchiseName,
			it.CreatedAt.Format("02/01/2006"),
			p.band(it.Band).Sprint(it.ScoreText),
			it.HighRisks,
		)
	}
	tw.Flush()
	if l.Search != "" {
		p.muted.Fprintf(w, "%d de %d análises\n", len(l.Items), l.Total)
	}
	if l.CanCompare {
		p.muted.Fprintf(w, "cof compare %s\n", strings.Join(l.Selected, " "))
	}
}

func (p palette) comparison(w io.Writer, cmp compare.Comparison) {
	if len(cmp.Missing) > 0 {
		p.muted.Fprintf(w, "Não encontradas: %s\n", strings.Join(cmp.Missing, ", "))
	}
	if cmp.Empty {
		p.heading.Fprintln(w, cmp.Title)
		p.muted.Fprintln(w, cmp.Message)
		return
	}
	for _, col := range cmp.Columns {
		fmt.Fprintln(w)
		p.heading.Fprintf(w, "%d. %s\n", col.Position, col.FranchiseName)
		fmt.Fprint(w, "  Score: ")
		p.band(col.Band).Fprintln(w, col.Score)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, row := range col.Financials {
			fmt.Fprintf(tw, "  %s\t%s\n", row.Label, row.Value)
		}
		tw.Flush()
		fmt.Fprint(w, "  Riscos Altos: ")
		if len(col.HighRisks) == 0 {
			p.good.Fprintln(w, col.HighRisksText())
		} else {
			p.poor.Fprintln(w, col.HighRisksText())
		}
		fmt.Fprintf(w, "  Riscos Médios: %s\n", col.MediumLabel)
		for _, title := range col.MediumPreview {
			fmt.Fprintf(w, "    - %s\n", title)
		}
		if col.MediumMore != "" {
			p.muted.Fprintf(w, "    %s\n", col.MediumMore)
		}
		fmt.Fprintf(w, "  Cláusulas Ausentes: %s\n", col.ClausesText())
	}
}

func (p palette) summary(w io.Writer, s usage.Summary) {
	p.heading.Fprintf(w, "Plano %s\n", s.PlanLabel)
	p.muted.Fprintln(w, s.PlanNote)
	fmt.Fprintf(w, "Análises realizadas: %d\n", s.TotalAnalyses)
	fmt.Fprint(w, "Score médio: ")
	if s.TotalAnalyses == 0 {
		fmt.Fprintln(w, analysis.Placeholder)
	} else {
		p.band(analysis.BandFor(s.AverageScore)).Fprintf(w, "%d/100\n", s.AverageScore)
	}
	if !s.Unlimited {
		c := p.good
		if s.LimitReached() {
			c = p.poor
		}
		c.Fprintf(w, "Restantes: %d de %d\n", s.Remaining, s.Limit)
	}
}

func (p palette) profile(w io.Writer, prof users.Profile) {
	p.heading.Fprintln(w, orDash(prof.Name))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"E-mail", prof.Email},
		{"Plano", prof.Plan.Label()},
		{"CPF", prof.TaxID},
		{"Telefone", prof.Phone},
		{"CEP", prof.ZipCode},
		{"Endereço", strings.TrimSpace(strings.Join(nonEmpty(prof.Address, prof.Number, prof.Complement), ", "))},
		{"Bairro", prof.District},
		{"Cidade", strings.Join(nonEmpty(prof.City, prof.State), " - ")},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\t%s\n", row[0], orDash(row[1]))
	}
	tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return analysis.Placeholder
	}
	return s
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
