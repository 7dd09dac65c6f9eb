package http

import (
	"log/slog"
	"net/http"

	"github.com/osdatum/backend/internal/service"
	"github.com/osdatum/backend/pkg/middleware"
	"github.com/osdatum/backend/pkg/validator"
)

// UserHandler handles authenticated user access and purchase endpoints.
type UserHandler struct {
	service *service.EntitlementService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.EntitlementService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// PurchaseGridRequest is the JSON request body for buying a grid.
type PurchaseGridRequest struct {
	GridID string `json:"gridId" validate:"required"`
}

// SubscribeRequest is the JSON request body for upgrading the subscription.
type SubscribeRequest struct {
	PlanType string `json:"planType" validate:"required,oneof=monthly yearly"`
}

// GetAccess handles GET /api/user/access
func (h *UserHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
		return
	}

	access, err := h.service.GetAccess(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, access)
}

// PurchaseGrid handles POST /api/user/purchase/grid
func (h *UserHandler) PurchaseGrid(w http.ResponseWriter, r *http.Request) {
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

// Subscribe handles POST /api/user/subscribe
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "user not authenticated")
		return
	}

	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if _, err := h.service.UpgradeSubscription(r.Context(), userID, req.PlanType); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
