package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
)

// CreateTestimonialRequest is the request body for POST /api/testimonials.
// Author, email and avatar come from the signed-in user.
type CreateTestimonialRequest struct {
	Role    string `json:"role" validate:"required,max=100"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required,max=5000"`
	Rank    *int   `json:"rank" validate:"omitempty,gte=0"`
}

// UpdateTestimonialRequest is the request body for PATCH /api/testimonials/{id}.
type UpdateTestimonialRequest struct {
	Author  *string `json:"author" validate:"omitempty,max=200"`
	Role    *string `json:"role" validate:"omitempty,max=100"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,max=5000"`
	Avatar  *string `json:"avatar" validate:"omitempty,url"`
	Rank    *int    `json:"rank" validate:"omitempty,gte=0"`
}

func (u UpdateTestimonialRequest) patch() domain.TestimonialPatch {
	return domain.TestimonialPatch{
		Author:  u.Author,
		Role:    u.Role,
		Title:   u.Title,
		Content: u.Content,
		Avatar:  u.Avatar,
		Rank:    u.Rank,
	}
}

// Validate implements Validator.
func (u UpdateTestimonialRequest) Validate() []string {
	if len(u.patch().Fields()) == 0 {
		return []string{"at least one field is required"}
	}
	return nil
}

type TestimonialController struct {
	Logger *slog.Logger
	Store  domain.DataStore
}

func NewTestimonialController(logger *slog.Logger, store domain.DataStore) *TestimonialController {
	return &TestimonialController{
		Logger: logger,
		Store:  store,
	}
}

// ListTestimonialsSuccessResponse is the success response envelope for GET /api/testimonials (200).
type ListTestimonialsSuccessResponse struct {
	Data  []domain.Testimonial `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListTestimonials godoc
// @Summary List testimonials
// @Description Visitors see approved testimonials only. Board members see every testimonial, pending included.
// @Tags testimonials
// @Produce json
// @Success 200 {object} controllers.ListTestimonialsSuccessResponse
// @Router /api/testimonials [get]
func (c *TestimonialController) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	if isBoard(user) {
		helpers.WriteJSONSuccess(w, http.StatusOK, c.Store.Testimonials())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Store.ApprovedTestimonials())
}

// CreateTestimonial godoc
// @Summary Submit a testimonial
// @Description Signed-in users only. The testimonial starts Pending and is dated today. Only board members may set a rank.
// @Tags testimonials
// @Accept json
// @Produce json
// @Param body body CreateTestimonialRequest true "Testimonial"
// @Success 201 {object} controllers.MutationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/testimonials [post]
func (c *TestimonialController) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateTestimonialRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Rank != nil && !isBoard(user) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only board members may rank testimonials")
		return
	}
	res := c.Store.AddTestimonial(r.Context(), domain.NewTestimonial{
		Author:      user.Name,
		AuthorEmail: user.Email,
		Role:        strings.TrimSpace(req.Role),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Avatar:      user.AvatarURL,
		Rank:        req.Rank,
	})
	writeResult(w, r, c.Logger, res, http.StatusCreated)
}

// UpdateTestimonial godoc
// @Summary Edit a testimonial
// @Description Board only. Status cannot be patched; use approve.
// @Tags testimonials
// @Accept json
// @Produce json
// @Param id path string true "Testimonial ID"
// @Param body body UpdateTestimonialRequest true "Fields to update"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/testimonials/{id} [patch]
func (c *TestimonialController) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req UpdateTestimonialRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res := c.Store.UpdateTestimonial(r.Context(), r.PathValue("id"), req.patch())
	writeResult(w, r, c.Logger, res, http.StatusOK)
}

// ApproveTestimonial godoc
// @Summary Approve a testimonial
// @Description Board only. Approved testimonials are shown publicly.
// @Tags testimonials
// @Produce json
// @Param id path string true "Testimonial ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/testimonials/{id}/approve [post]
func (c *TestimonialController) ApproveTestimonial(w http.ResponseWriter, r *http.Request) {
	res := c.Store.ApproveTestimonial(r.Context(), r.PathValue("id"))
	writeResult(w, r, c.Logger, res, http.StatusOK)
}

// DeleteTestimonial godoc
// @Summary Delete a testimonial
// @Tags testimonials
// @Produce json
// @Param id path string true "Testimonial ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/testimonials/{id} [delete]
func (c *TestimonialController) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	res := c.Store.DeleteTestimonial(r.Context(), r.PathValue("id"))
	writeResult(w, r, c.Logger, res, http.StatusOK)
}
