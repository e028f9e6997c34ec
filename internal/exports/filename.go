package exports

import (
	"strings"
	"time"

	"expertcof/internal/analysis"
	"expertcof/internal/shared/util"
)

const fallbackName = "Franquia"

// SpreadsheetFileName is Analise_COF_<name>_<YYYY-MM-DD>.xlsx with whitespace
// runs in the name collapsed to underscores.
func SpreadsheetFileName(r analysis.Result, now time.Time) string {
	name := strings.Join(strings.Fields(r.FranchiseName), "_")
	if name == "" {
		name = fallbackName
	}
	return "Analise_COF_" + util.CleanName(name) + "_" + now.Format("2006-01-02") + ".xlsx"
}

// DocumentFileName is Analise_ExpertCOF_<name>.pdf. It carries no date.
func DocumentFileName(r analysis.Result) string {
	name := strings.TrimSpace(r.FranchiseName)
	if name == "" {
		name = fallbackName
	}
	return "Analise_ExpertCOF_" + util.CleanName(name) + ".pdf"
}
