package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"expertcof/internal/auth"
	"expertcof/internal/billing"
	"expertcof/internal/shared/telemetry"
	"expertcof/internal/users"
)

const (
	UpdatedMessage   = "Perfil atualizado com sucesso!"
	PasswordMessage  = "Senha atualizada com sucesso!"
	CancelledMessage = "Assinatura cancelada com sucesso."

	updateFailed   = "Erro ao atualizar perfil."
	passwordFailed = "Erro ao atualizar senha."
)

var (
	ErrMissingPrice = errors.New("checkout price is not configured")
	ErrUpdateFailed = errors.New("profile update failed")
)

// PasswordUpdater changes the password of the token's user.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, token *oauth2.Token, password string) error
}

// Subscriptions manages the paid plan through the API.
type Subscriptions interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error)
	CancelSubscription(ctx context.Context, userID string) error
	CreatePortalSession(ctx context.Context, userID string) (string, error)
}

// Service backs the profile screen.
type Service struct {
	Users     *users.Service
	Passwords PasswordUpdater
	Billing   Subscriptions
	PriceID   string
	// LocalPlans records cancellations in self-hosted stores. The hosted
	// backend updates the row on its own.
	LocalPlans bool
}

// Get loads the caller's profile.
func (s *Service) Get(ctx context.Context, who users.Identity) (users.Profile, error) {
	return s.Users.Profile(ctx, who)
}

// Update saves the editable fields with CPF and phone masked.
func (s *Service) Update(ctx context.Context, userID string, update users.ProfileUpdate) (users.Profile, error) {
	p, err := s.Users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, users.ErrMissingUser) {
			return users.Profile{}, err
		}
		return users.Profile{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	return p, nil
}

// ChangePassword validates the pair before asking the auth service.
func (s *Service) ChangePassword(ctx context.Context, accessToken, password, confirm string) error {
	if err := auth.ValidatePasswordChange(password, confirm); err != nil {
		return err
	}
	if strings.TrimSpace(accessToken) == "" {
		return auth.ErrNoSession
	}
	return s.Passwords.UpdatePassword(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}, password)
}

// Checkout returns the hosted checkout url for the configured price.
func (s *Service) Checkout(ctx context.Context, userID string) (string, error) {
	if s.PriceID == "" {
		return "", ErrMissingPrice
	}
	return s.Billing.CreateCheckoutSession(ctx, userID, s.PriceID)
}

// Cancel ends the subscription and reports the plan to display, which is
// always free once the API accepted the cancellation.
func (s *Service) Cancel(ctx context.Context, userID string) (users.Plan, error) {
	if err := s.Billing.CancelSubscription(ctx, userID); err != nil {
		return "", err
	}
	if s.LocalPlans {
		if err := s.Users.SetPlan(ctx, userID, users.PlanFree); err != nil {
			telemetry.Warn("profile.plan_reset_failed", map[string]any{"user_id": userID, "error": err})
		}
	}
	return users.PlanFree, nil
}

// Portal returns the subscription management url.
func (s *Service) Portal(ctx context.Context, userID string) (string, error) {
	return s.Billing.CreatePortalSession(ctx, userID)
}

// PasswordError is the message shown for a failed password change.
func PasswordError(err error) string {
	return auth.UserMessage(err, passwordFailed)
}

// SubscriptionError is the message shown for a failed subscription call.
func SubscriptionError(op billing.Operation, err error) string {
	return billing.UserMessage(op, err)
}
