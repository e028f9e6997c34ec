package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
	"expertcof/internal/compare"
)

const (
	// RecentLimit is how many analyses the dashboard list shows.
	RecentLimit = 20

	EmptyMessage    = "Nenhuma análise realizada ainda."
	NoMatchMessage  = "Nenhuma análise encontrada para sua busca."
	NoRecentMessage = "Nenhuma análise encontrada."
)

// Item is one row of a history list.
type Item struct {
	ID            string        `json:"id"`
	FranchiseName string        `json:"franchiseName"`
	TaxID         string        `json:"taxId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Score         int           `json:"score"`
	ScoreText     string        `json:"scoreText"`
	Band          analysis.Band `json:"band"`
	BandLabel     string        `json:"bandLabel"`
	HighRisks     int           `json:"highRisks"`
	Selected      bool          `json:"selected"`
}

// Listing is a history or recent list ready to render.
type Listing struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Items   []Item `json:"items"`
	// Total counts the user's analyses before the search filter.
	Total        int      `json:"total"`
	Search       string   `json:"search,omitempty"`
	Selected     []string `json:"selected"`
	CanCompare   bool     `json:"canCompare"`
	CompareQuery string   `json:"compareQuery,omitempty"`
}

// Service builds history views over the analyses store.
type Service struct {
	Analyses *analyses.Service
}

// NewService constructs a Service.
func NewService(svc *analyses.Service) *Service {
	return &Service{Analyses: svc}
}

// List returns the user's analyses filtered by search, with the comparison
// selection marked.
func (s *Service) List(ctx context.Context, userID, search string, sel compare.Selection) (Listing, error) {
	recs, err := s.Analyses.Repo.ListForUser(ctx, userID)
	if err != nil {
		return Listing{}, fmt.Errorf("list history: %w", err)
	}

	search = strings.TrimSpace(search)
	out := Listing{
		Items:    []Item{},
		Total:    len(recs),
		Search:   search,
		Selected: sel.IDs(),
	}
	if sel.CanCompare() {
		out.CanCompare = true
		out.CompareQuery = sel.Query()
	}
	if len(recs) == 0 {
		out.Empty = true
		out.Message = EmptyMessage
		return out, nil
	}

	for _, rec := range recs {
		if !Matches(rec, search) {
			continue
		}
		item := itemFor(rec)
		item.Selected = sel.Contains(rec.ID)
		out.Items = append(out.Items, item)
	}
	if len(out.Items) == 0 {
		out.Message = NoMatchMessage
	}
	return out, nil
}

// Recent returns the newest analyses visible to the caller. The query has no
// owner filter; rows owned by someone else are dropped afterwards, which only
// matters for stores without row policies.
func (s *Service) Recent(ctx context.Context, userID string, limit int) (Listing, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	recs, err := s.Analyses.Repo.ListRecent(ctx, limit)
	if err != nil {
		return Listing{}, fmt.Errorf("list recent: %w", err)
	}
	out := Listing{Items: make([]Item, 0, len(recs)), Selected: []string{}}
	for _, rec := range recs {
		if rec.UserID != "" && rec.UserID != userID {
			continue
		}
		out.Items = append(out.Items, itemFor(rec))
	}
	out.Total = len(out.Items)
	if out.Total == 0 {
		out.Empty = true
		out.Message = NoRecentMessage
	}
	return out, nil
}

// Detail returns one of the user's analyses.
func (s *Service) Detail(ctx context.Context, userID, id string) (analysis.Result, error) {
	return s.Analyses.Result(ctx, userID, id)
}

// Matches reports whether rec matches search: a case-insensitive franchise
// name substring or a tax id substring. Blank search matches everything.
func Matches(rec analyses.Record, search string) bool {
	if search == "" {
		return true
	}
	name := rec.FranchiseName
	taxID := rec.TaxID
	if name == "" || taxID == "" {
		res := rec.Result()
		if name == "" {
			name = res.FranchiseName
		}
		if taxID == "" {
			taxID = res.TaxID
		}
	}
	if strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
		return true
	}
	return taxID != "" && strings.Contains(taxID, search)
}

func itemFor(rec analyses.Record) Item {
	res := rec.Result()
	item := Item{
		ID:            rec.ID,
		FranchiseName: res.FranchiseName,
		TaxID:         res.TaxID,
		CreatedAt:     rec.CreatedAt,
		Score:         res.Score,
		ScoreText:     fmt.Sprintf("%d/100", res.Score),
		Band:          res.Band(),
		BandLabel:     res.Band().Label(),
		HighRisks:     len(res.RisksBySeverity(analysis.SeverityHigh)),
	}
	if !rec.PayloadValid() {
		item.ScoreText = analysis.Placeholder
	}
	return item
}
