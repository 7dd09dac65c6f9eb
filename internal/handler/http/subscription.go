package http

import (
	"log/slog"
	"net/http"

	"github.com/osdatum/backend/internal/domain"
	"github.com/osdatum/backend/internal/service"
	"github.com/osdatum/backend/pkg/middleware"
	"github.com/osdatum/backend/pkg/validator"
)

// SubscriptionHandler handles the legacy purchase/subscription routes and
// the public application form. The legacy routes predate the /user prefix
// and are kept for older frontend builds.
type SubscriptionHandler struct {
	service *service.EntitlementService
	logger  *slog.Logger
}

// NewSubscriptionHandler creates a new subscription HTTP handler.
func NewSubscriptionHandler(svc *service.EntitlementService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc, logger: logger}
}

// UpgradeRequest is the JSON request body for POST /api/subscription. The
// email and name fields are accepted for backward compatibility but the
// upgrade always applies to the authenticated user.
type UpgradeRequest struct {
	PlanType string `json:"planType" validate:"omitempty,oneof=monthly yearly"`
	Email    string `json:"email" validate:"omitempty,email"`
	Name     string `json:"name" validate:"max=100"`
}

// ApplyRequest is the JSON request body for the public application form.
// Field names follow the frontend form contract.
type ApplyRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Instansi  string `json:"instansi" validate:"max=200"`
	JobTitle  string `json:"jobTitle" validate:"max=100"`
	Keperluan string `json:"keperluan" validate:"max=2000"`
}

// PurchaseGrid handles POST /api/purchase/grid
func (h *SubscriptionHandler) PurchaseGrid(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
		return
	}

	var req PurchaseGridRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.PurchaseGrid(r.Context(), userID, req.GridID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"gridId":  req.GridID,
	})
}

// Upgrade handles POST /api/subscription
func (h *SubscriptionHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
		return
	}

	var req UpgradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	planType := req.PlanType
	if planType == "" {
		planType = domain.PlanMonthly
	}

	if _, err := h.service.UpgradeSubscription(r.Context(), userID, planType); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Apply handles POST /api/subscription/apply
func (h *SubscriptionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	app := &domain.SubscriptionApplication{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Institution: req.Instansi,
		JobTitle:    req.JobTitle,
		Purpose:     req.Keperluan,
	}
	if err := h.service.ApplySubscription(r.Context(), app); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
