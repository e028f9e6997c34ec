package analyses

import (
	"encoding/json"
	"time"

	"expertcof/internal/analysis"
)

const StatusCompleted = "completed"

// Record is one stored analysis row. RiskAnalysis keeps the backend payload
// as received; Result normalizes it on demand.
type Record struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	FranchiseName string          `json:"franchiseName"`
	FilePath      string          `json:"filePath,omitempty"`
	Status        string          `json:"status"`
	TaxID         string          `json:"taxId,omitempty"`
	RiskAnalysis  json.RawMessage `json:"riskAnalysis,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Result returns the normalized analysis carried by the record. The record id,
// franchise column, tax id and creation time fill gaps in the payload.
func (r Record) Result() analysis.Result {
	res, _ := analysis.Decode(r.RiskAnalysis)
	res.ID = r.ID
	if res.FranchiseName == "" {
		res.FranchiseName = r.FranchiseName
	}
	if res.TaxID == "" {
		res.TaxID = r.TaxID
	}
	if res.UploadDate == "" && !r.CreatedAt.IsZero() {
		res.UploadDate = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	return res
}

// PayloadValid reports whether RiskAnalysis decodes as an object.
func (r Record) PayloadValid() bool {
	_, err := analysis.Decode(r.RiskAnalysis)
	return err == nil
}

// taxIDFrom reads cnpj out of an extracted_data document.
func taxIDFrom(extracted []byte) string {
	if len(extracted) == 0 {
		return ""
	}
	var data struct {
		CNPJ string `json:"cnpj"`
	}
	if err := json.Unmarshal(extracted, &data); err != nil {
		return ""
	}
	return data.CNPJ
}
