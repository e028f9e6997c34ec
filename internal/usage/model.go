package usage

import "expertcof/internal/users"

// Summary is the dashboard's plan and consumption snapshot.
type Summary struct {
	Plan          users.Plan `json:"plan"`
	PlanLabel     string     `json:"planLabel"`
	PlanNote      string     `json:"planNote"`
	TotalAnalyses int        `json:"totalAnalyses"`
	AverageScore  int        `json:"averageScore"`
	// Limit and Remaining are zero for unlimited plans.
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

// LimitReached reports whether a free-plan user has used every analysis.
// The backend enforces the limit; this only drives the display.
func (s Summary) LimitReached() bool {
	return !s.Unlimited && s.Remaining == 0
}
