package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
)

// MemberCount reports the shared member total for visitors without a browser session.
type MemberCount interface {
	Value() int64
}

type MeController struct {
	Logger  *slog.Logger
	Members MemberCount
}

func NewMeController(logger *slog.Logger, members MemberCount) *MeController {
	return &MeController{
		Logger:  logger,
		Members: members,
	}
}

// GetMeSuccessResponse is the success response envelope for GET /api/me (200).
type GetMeSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMe godoc
// @Summary Get the signed-in user
// @Description Returns the application user derived from the browser's identity-provider session, including the role.
// @Tags me
// @Produce json
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/me [get]
func (c *MeController) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMeRequest is the request body for PATCH /api/me. Omitted fields are unchanged.
type UpdateMeRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

// Validate implements Validator.
func (u UpdateMeRequest) Validate() []string {
	var errs []string
	if u.Name == nil && u.Avatar == nil {
		errs = append(errs, "at least one of name or avatar is required")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be blank")
	}
	return errs
}

// UpdateMe godoc
// @Summary Update the signed-in user's profile
// @Description Applies the change locally at once; the display name is written to the identity provider in the background.
// @Tags me
// @Accept json
// @Produce json
// @Param body body UpdateMeRequest true "Fields to update"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/me [patch]
func (c *MeController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.ResolverFromContext(r.Context())
	if !ok || res.CurrentUser() == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateMeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	res.UpdateProfile(r.Context(), domain.ProfileUpdate{Name: req.Name, AvatarURL: req.Avatar})
	helpers.WriteJSONSuccess(w, http.StatusOK, res.CurrentUser())
}

// MemberStats is the body of GET /api/stats/members.
type MemberStats struct {
	TotalMembers int64 `json:"totalMembers"`
}

// GetMemberStatsSuccessResponse is the success response envelope for GET /api/stats/members (200).
type GetMemberStatsSuccessResponse struct {
	Data  MemberStats       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMemberStats godoc
// @Summary Get the member count
// @Description Returns the number of registered members, or the seed value until the first count succeeds.
// @Tags me
// @Produce json
// @Success 200 {object} controllers.GetMemberStatsSuccessResponse
// @Router /api/stats/members [get]
func (c *MeController) GetMemberStats(w http.ResponseWriter, r *http.Request) {
	total := c.Members.Value()
	if res, ok := middleware.ResolverFromContext(r.Context()); ok {
		total = res.TotalMembers()
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MemberStats{TotalMembers: total})
}
