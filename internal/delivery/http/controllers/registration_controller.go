package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
)

type RegistrationController struct {
	Logger *slog.Logger
	Store  domain.DataStore
}

func NewRegistrationController(logger *slog.Logger, store domain.DataStore) *RegistrationController {
	return &RegistrationController{
		Logger: logger,
		Store:  store,
	}
}

// RegisterForEvent godoc
// @Summary Register for an event
// @Description Registers the signed-in user. The registration starts Pending and bumps the event's registered count. Capacity is advisory and not enforced.
// @Tags registrations
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} controllers.MutationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/events/{id}/registrations [post]
func (c *RegistrationController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID := r.PathValue("id")
	if _, ok := c.Store.Event(eventID); !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	res := c.Store.RegisterForEvent(r.Context(), domain.NewEventRegistration{
		EventID:   eventID,
		UserID:    user.Email,
		UserName:  user.Name,
		UserEmail: user.Email,
	})
	writeResult(w, r, c.Logger, res, http.StatusCreated)
}

// ListRegistrationsSuccessResponse is the success response envelope for GET /api/registrations/me (200).
type ListRegistrationsSuccessResponse struct {
	Data  []domain.EventRegistration `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListMyRegistrations godoc
// @Summary List my registrations
// @Tags registrations
// @Produce json
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/registrations/me [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Store.RegistrationsForUser(user.Email))
}

// ListRegistrationsResponse is the data payload for GET /api/registrations.
type ListRegistrationsResponse = helpers.Page[domain.EventRegistration]

// ListRegistrationsPageSuccessResponse is the success response envelope for GET /api/registrations (200).
type ListRegistrationsPageSuccessResponse struct {
	Data  ListRegistrationsResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListRegistrations godoc
// @Summary List all registrations
// @Description Board only. Newest first as of the last full load.
// @Tags registrations
// @Produce json
// @Param eventId query string false "Only registrations for this event"
// @Param status query string false "Pending or Approved"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100); page_size is also accepted"
// @Success 200 {object} controllers.ListRegistrationsPageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/registrations [get]
func (c *RegistrationController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	list := filterByStatus(c.Store.EventRegistrations(), r.URL.Query().Get("status"),
		func(reg domain.EventRegistration) domain.Status { return reg.Status })
	if eventID := r.URL.Query().Get("eventId"); eventID != "" {
		filtered := make([]domain.EventRegistration, 0, len(list))
		for _, reg := range list {
			if reg.EventID == eventID {
				filtered = append(filtered, reg)
			}
		}
		list = filtered
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.PageOf(r, list))
}

// ApproveRegistration godoc
// @Summary Approve a registration
// @Description Board only. The registrant is notified by email.
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/registrations/{id}/approve [post]
func (c *RegistrationController) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	res := c.Store.ApproveRegistration(r.Context(), r.PathValue("id"))
	writeResult(w, r, c.Logger, res, http.StatusOK)
}

// DeleteRegistration godoc
// @Summary Cancel a registration
// @Description Board members may delete any registration; other users only their own. The event's registered count drops by one, never below zero.
// @Tags registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/registrations/{id} [delete]
func (c *RegistrationController) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id := r.PathValue("id")
	reg, ok := c.Store.EventRegistration(id)
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
		return
	}
	if !isBoard(user) && !strings.EqualFold(reg.UserID, user.Email) {
		c.Logger.WarnContext(r.Context(), "registration delete denied", "email", user.Email, "registration", id)
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not your registration")
		return
	}
	res := c.Store.DeleteRegistration(r.Context(), id)
	writeResult(w, r, c.Logger, res, http.StatusOK)
}
