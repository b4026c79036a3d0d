package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

// MockUpgradeRequest is the request body for POST /api/payment/mock-upgrade.
type MockUpgradeRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (m MockUpgradeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(m.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// MockUpgradeResponse is the response body for POST /api/payment/mock-upgrade.
type MockUpgradeResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Plan        string `json:"plan"`
}

type PaymentController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewPaymentController(logger *slog.Logger, svc domain.UserService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// MockUpgrade godoc
// @Summary Mock plan upgrade
// @Description Marks the user's plan as "pro" and returns a mock checkout URL. There is no real payment provider behind this endpoint.
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MockUpgradeRequest true "Account to upgrade"
// @Success 200 {object} helpers.APIResponse "data contains checkout_url and plan"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/payment/mock-upgrade [post]
func (c *PaymentController) MockUpgrade(w http.ResponseWriter, r *http.Request) {
	var req MockUpgradeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	checkoutURL, err := c.Service.UpgradePlan(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "upgrade failed")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MockUpgradeResponse{CheckoutURL: checkoutURL, Plan: domain.PlanPro})
}
