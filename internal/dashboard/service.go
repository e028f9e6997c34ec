package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
	"expertcof/internal/analyzer"
	"expertcof/internal/billing"
	"expertcof/internal/events"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/telemetry"
	"expertcof/internal/users"
)

// Uploader sends a document for analysis.
type Uploader interface {
	Upload(ctx context.Context, token *oauth2.Token, filename string, body []byte) (analysis.Result, error)
}

// CheckoutVerifier confirms a finished checkout.
type CheckoutVerifier interface {
	VerifyCheckoutSession(ctx context.Context, sessionID, userID string) (billing.Verification, error)
}

// PlanSetter records a plan change locally.
type PlanSetter interface {
	SetPlan(ctx context.Context, userID string, plan users.Plan) error
}

var ErrMissingSession = errors.New("checkout session id is required")

// Service runs uploads for the dashboard.
type Service struct {
	Analyzer Uploader
	Widgets  *Widgets
	Bus      *events.Bus
	// Recorder is set for self-hosted stores; the hosted upload endpoint
	// persists results itself.
	Recorder analyses.Recorder
	Checkout CheckoutVerifier
	// Plans is set for self-hosted stores, where no backend flips the plan
	// after payment.
	Plans PlanSetter
	Now   func() time.Time
}

// Upload runs one upload for userID through the user's widget.
func (s *Service) Upload(ctx context.Context, userID string, token *oauth2.Token, filename string, body []byte) (analysis.Result, error) {
	w := s.Widgets.For(userID)
	if err := analyzer.Validate(filename, body); err != nil {
		metrics.IncUpload("rejected")
		w.Reject(err)
		return analysis.Result{}, err
	}
	if err := w.Begin(); err != nil {
		metrics.IncUpload("busy")
		return analysis.Result{}, err
	}

	start := time.Now()
	res, err := s.Analyzer.Upload(ctx, token, filename, body)
	metrics.ObserveUploadDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		outcome := "failed"
		if errors.Is(err, analyzer.ErrUnauthenticated) {
			outcome = "rejected"
		}
		metrics.IncUpload(outcome)
		telemetry.Warn("dashboard.upload_failed", map[string]any{
			"user_id":  userID,
			"filename": filename,
			"error":    err,
		})
		w.Finish(analysis.Result{}, err)
		return analysis.Result{}, err
	}

	if s.Recorder != nil {
		res = s.record(ctx, userID, res)
	}
	metrics.IncUpload("success")
	telemetry.Info("dashboard.upload_completed", map[string]any{
		"user_id":     userID,
		"analysis_id": res.ID,
		"score":       res.Score,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	w.Finish(res, nil)
	if s.Bus != nil {
		s.Bus.Publish(events.Invalidate(userID, res.ID))
	}
	return res, nil
}

// record keeps a local copy of res. A failure is logged, not returned: the
// user still sees the analysis.
func (s *Service) record(ctx context.Context, userID string, res analysis.Result) analysis.Result {
	payload, err := json.Marshal(res)
	if err != nil {
		telemetry.Error("dashboard.record_encode_failed", map[string]any{"error": err})
		return res
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rec, err := s.Recorder.Create(ctx, analyses.Record{
		UserID:        userID,
		FranchiseName: res.FranchiseName,
		FilePath:      res.Filename,
		Status:        analyses.StatusCompleted,
		TaxID:         res.TaxID,
		RiskAnalysis:  payload,
		CreatedAt:     now().UTC(),
	})
	if err != nil {
		telemetry.Error("dashboard.record_failed", map[string]any{"user_id": userID, "error": err})
		return res
	}
	res.ID = rec.ID
	if res.UploadDate == "" {
		res.UploadDate = rec.CreatedAt.UTC().Format(time.RFC3339)
	}
	return res
}

// State returns userID's widget snapshot.
func (s *Service) State(userID string) State {
	return s.Widgets.For(userID).Snapshot()
}

// Clear leaves the result view.
func (s *Service) Clear(userID string) {
	s.Widgets.For(userID).Clear()
}

// VerifyCheckout confirms the payment that sent the user back to the
// dashboard.
func (s *Service) VerifyCheckout(ctx context.Context, userID, sessionID string) (billing.Verification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return billing.Verification{}, ErrMissingSession
	}
	v, err := s.Checkout.VerifyCheckoutSession(ctx, sessionID, userID)
	if err != nil {
		return billing.Verification{}, err
	}
	if v.Confirmed() {
		telemetry.Info("dashboard.checkout_confirmed", map[string]any{"user_id": userID})
		if s.Plans != nil {
			if err := s.Plans.SetPlan(ctx, userID, users.PlanPremium); err != nil {
				telemetry.Error("dashboard.plan_update_failed", map[string]any{"user_id": userID, "error": err})
			}
		}
		if s.Bus != nil {
			s.Bus.Publish(events.Invalidate(userID, ""))
		}
	}
	return v, nil
}
