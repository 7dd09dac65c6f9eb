package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osdatum/backend/internal/domain"
	"github.com/osdatum/backend/internal/event"
	"github.com/osdatum/backend/internal/repository"
	"github.com/osdatum/backend/internal/sender"
	apperrors "github.com/osdatum/backend/pkg/errors"
)

// EntitlementService manages grid purchases and subscription tiers.
type EntitlementService struct {
	users        repository.UserRepository
	purchases    repository.PurchaseRepository
	applications repository.ApplicationRepository
	events       *event.Producer
	mailer       sender.Sender
	adminEmail   string
	logger       *slog.Logger
}

// NewEntitlementService creates the entitlement service.
func NewEntitlementService(
	users repository.UserRepository,
	purchases repository.PurchaseRepository,
	applications repository.ApplicationRepository,
	events *event.Producer,
	mailer sender.Sender,
	adminEmail string,
	logger *slog.Logger,
) *EntitlementService {
	return &EntitlementService{
		users:        users,
		purchases:    purchases,
		applications: applications,
		events:       events,
		mailer:       mailer,
		adminEmail:   adminEmail,
		logger:       logger,
	}
}

// GetAccess returns the user's effective access level and owned grids.
// A user with no purchases gets the free level and an empty list.
func (s *EntitlementService) GetAccess(ctx context.Context, userID string) (*domain.Access, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	grids, err := s.purchases.ListGridIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.Access{
		Level:          domain.AccessLevel(user.SubscriptionTier, grids),
		PurchasedGrids: grids,
	}, nil
}

// PurchaseGrid records a grid purchase for the user. Buying a grid twice,
// including two concurrent requests for the same grid, yields exactly one
// recorded purchase; the loser gets an already-purchased error.
func (s *EntitlementService) PurchaseGrid(ctx context.Context, userID, gridID string) error {
	if gridID == "" {
		return apperrors.InvalidInput("gridId is required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	created, err := s.purchases.Create(ctx, userID, gridID)
	if err != nil {
		return err
	}
	if !created {
		return apperrors.Conflict("ALREADY_PURCHASED", "Grid already purchased")
	}

	s.events.PublishGridPurchased(ctx, userID, gridID)
	s.logger.InfoContext(ctx, "grid purchased",
		slog.String("user_id", userID),
		slog.String("grid_id", gridID),
	)
	return nil
}

// UpgradeSubscription moves the user to the subscription tier. The tier
// transition is one-way; upgrading an already-subscribed user is a no-op
// that still succeeds. A confirmation email is sent on a best-effort basis.
func (s *EntitlementService) UpgradeSubscription(ctx context.Context, userID, planType string) (*domain.User, error) {
	if !domain.ValidPlanType(planType) {
		return nil, apperrors.InvalidInput("planType must be monthly or yearly")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.HasSubscription() {
		if err := s.users.UpdateTier(ctx, userID, domain.TierSubscription); err != nil {
			return nil, err
		}
		user.SubscriptionTier = domain.TierSubscription
	}

	s.events.PublishSubscriptionUpgraded(ctx, userID, user.Email, planType)

	msg := sender.Message{
		To:      []string{user.Email},
		Subject: "Your OSDATUM subscription is active",
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your %s subscription is now active. You have full access to all grids.</p>",
			user.Name, planType,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "subscription confirmation email failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "subscription upgraded",
		slog.String("user_id", userID),
		slog.String("plan_type", planType),
	)
	return user, nil
}

// ApplySubscription stores a public subscription application and notifies
// both the sales inbox and the applicant. Unlike the confirmation email on
// upgrade, delivery failure here fails the request: the form is the only
// channel the applicant has.
func (s *EntitlementService) ApplySubscription(ctx context.Context, app *domain.SubscriptionApplication) error {
	if err := s.applications.Create(ctx, app); err != nil {
		return err
	}

	adminMsg := sender.Message{
		To:      []string{s.adminEmail},
		Subject: fmt.Sprintf("New subscription application from %s", app.FullName()),
		HTMLBody: fmt.Sprintf(
			"<p>Name: %s</p><p>Email: %s</p><p>Institution: %s</p><p>Job title: %s</p><p>Purpose: %s</p>",
			app.FullName(), app.Email, app.Institution, app.JobTitle, app.Purpose,
		),
	}
	if err := s.mailer.Send(ctx, adminMsg); err != nil {
		return apperrors.Internal(fmt.Errorf("send application notification: %w", err))
	}

	confirmMsg := sender.Message{
		To:      []string{app.Email},
		Subject: "We received your OSDATUM subscription application",
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thanks for applying for an OSDATUM subscription. Our team will follow up shortly.</p>",
			app.FullName(),
		),
	}
	if err := s.mailer.Send(ctx, confirmMsg); err != nil {
		return apperrors.Internal(fmt.Errorf("send application confirmation: %w", err))
	}

	s.logger.InfoContext(ctx, "subscription application received",
		slog.Int64("application_id", app.ID),
		slog.String("email", app.Email),
	)
	return nil
}
