package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/domain"
)

// SubmitVolunteerRequest is the request body for POST /api/volunteers.
type SubmitVolunteerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Interest string `json:"interest" validate:"required,max=200"`
}

type VolunteerController struct {
	Logger *slog.Logger
	Store  domain.DataStore
}

func NewVolunteerController(logger *slog.Logger, store domain.DataStore) *VolunteerController {
	return &VolunteerController{
		Logger: logger,
		Store:  store,
	}
}

// SubmitVolunteerApplication godoc
// @Summary Apply to volunteer
// @Description Public form. The application starts Pending.
// @Tags volunteers
// @Accept json
// @Produce json
// @Param body body SubmitVolunteerRequest true "Application"
// @Success 201 {object} controllers.MutationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/volunteers [post]
func (c *VolunteerController) SubmitVolunteerApplication(w http.ResponseWriter, r *http.Request) {
	var req SubmitVolunteerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res := c.Store.SubmitVolunteerApplication(r.Context(), domain.NewVolunteerApplication{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Interest: strings.TrimSpace(req.Interest),
	})
	writeResult(w, r, c.Logger, res, http.StatusCreated)
}

// ListVolunteerApplicationsResponse is the data payload for GET /api/volunteers.
type ListVolunteerApplicationsResponse = helpers.Page[domain.VolunteerApplication]

// ListVolunteerApplicationsSuccessResponse is the success response envelope for GET /api/volunteers (200).
type ListVolunteerApplicationsSuccessResponse struct {
	Data  ListVolunteerApplicationsResponse `json:"data"`
	Error *helpers.APIError                 `json:"error"`
}

// ListVolunteerApplications godoc
// @Summary List volunteer applications
// @Description Board only. Newest first as of the last full load.
// @Tags volunteers
// @Produce json
// @Param status query string false "Pending or Approved"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100); page_size is also accepted"
// @Success 200 {object} controllers.ListVolunteerApplicationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/volunteers [get]
func (c *VolunteerController) ListVolunteerApplications(w http.ResponseWriter, r *http.Request) {
	list := filterByStatus(c.Store.VolunteerApplications(), r.URL.Query().Get("status"),
		func(a domain.VolunteerApplication) domain.Status { return a.Status })
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.PageOf(r, list))
}

// ApproveVolunteerApplication godoc
// @Summary Approve a volunteer application
// @Tags volunteers
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/volunteers/{id}/approve [post]
func (c *VolunteerController) ApproveVolunteerApplication(w http.ResponseWriter, r *http.Request) {
	res := c.Store.ApproveVolunteerApplication(r.Context(), r.PathValue("id"))
	writeResult(w, r, c.Logger, res, http.StatusOK)
}

// filterByStatus keeps items whose status matches; an empty status keeps all.
func filterByStatus[T any](items []T, status string, statusOf func(T) domain.Status) []T {
	if status == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if string(statusOf(it)) == status {
			out = append(out, it)
		}
	}
	return out
}
