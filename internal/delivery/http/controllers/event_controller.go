package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/domain"
)

// CreateEventRequest is the request body for POST /api/events.
type CreateEventRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,max=50"`
	Location     string `json:"location" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=10000"`
	Type         string `json:"type" validate:"required,oneof=Class Event Fundraiser"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	Image        string `json:"image" validate:"omitempty,url"`
	Registered   *int   `json:"registered" validate:"omitempty,gte=0"`
	InitialLikes *int   `json:"initialLikes" validate:"omitempty,gte=0"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	if strings.TrimSpace(c.Title) == "" {
		return []string{"title must not be blank"}
	}
	return nil
}

// UpdateEventRequest is the request body for PATCH /api/events/{id}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Date         *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         *string `json:"time" validate:"omitempty,max=50"`
	Location     *string `json:"location" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=10000"`
	Type         *string `json:"type" validate:"omitempty,oneof=Class Event Fundraiser"`
	Capacity     *int    `json:"capacity" validate:"omitempty,gte=0"`
	Image        *string `json:"image" validate:"omitempty,url"`
	InitialLikes *int    `json:"initialLikes" validate:"omitempty,gte=0"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	if len(u.patch().Fields()) == 0 {
		return []string{"at least one field is required"}
	}
	return nil
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:        u.Title,
		Date:         u.Date,
		Time:         u.Time,
		Location:     u.Location,
		Description:  u.Description,
		Capacity:     u.Capacity,
		Image:        u.Image,
		InitialLikes: u.InitialLikes,
	}
	if u.Type != nil {
		t := domain.EventType(*u.Type)
		p.Type = &t
	}
	return p
}

type EventController struct {
	Logger *slog.Logger
	Store  domain.DataStore
}

func NewEventController(logger *slog.Logger, store domain.DataStore) *EventController {
	return &EventController{
		Logger: logger,
		Store:  store,
	}
}

// ListEventsSuccessResponse is the success response envelope for GET /api/events (200).
type ListEventsSuccessResponse struct {
	Data  []domain.Event    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event, by date ascending as of the last full load. Events created since are appended.
// @Tags events
// @Produce json
// @Param type query string false "Filter by type (Class, Event, Fundraiser)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := c.Store.Events()
	if t := r.URL.Query().Get("type"); t != "" {
		filtered := make([]domain.Event, 0, len(events))
		for _, e := range events {
			if string(e.Type) == t {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventSuccessResponse is the success response envelope for GET /api/events/{id} (200).
type GetEventSuccessResponse struct {
	Data  domain.Event      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := c.Store.Event(r.PathValue("id"))
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, e)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Board only. The description is sanitised. registered and initialLikes default to 0.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event"
// @Success 201 {object} controllers.MutationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res := c.Store.CreateEvent(r.Context(), domain.NewEvent{
		Title:        strings.TrimSpace(req.Title),
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Description:  req.Description,
		Type:         domain.EventType(req.Type),
		Capacity:     req.Capacity,
		Image:        req.Image,
		Registered:   req.Registered,
		InitialLikes: req.InitialLikes,
	})
	writeResult(w, r, c.Logger, res, http.StatusCreated)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Board only. Only the supplied fields change.
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/events/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res := c.Store.UpdateEvent(r.Context(), r.PathValue("id"), req.patch())
	writeResult(w, r, c.Logger, res, http.StatusOK)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Board only. The event's registrations are removed with it.
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.MutationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: rejected"
// @Router /api/events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	res := c.Store.DeleteEvent(r.Context(), r.PathValue("id"))
	writeResult(w, r, c.Logger, res, http.StatusOK)
}
