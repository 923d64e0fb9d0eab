package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"blueelephant/internal/delivery/http/controllers"
	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/delivery/http/middleware"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Me            *controllers.MeController
	Events        *controllers.EventController
	Testimonials  *controllers.TestimonialController
	Volunteers    *controllers.VolunteerController
	Registrations *controllers.RegistrationController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	signedIn := middleware.RequireRole(logger, middleware.DashboardRoles...)
	board := middleware.RequireRole(logger, middleware.BoardRoles...)

	// Auth
	mux.HandleFunc("GET /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/callback", c.Auth.Callback)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)

	// Current user
	mux.HandleFunc("GET /api/me", signedIn(c.Me.GetMe))
	mux.HandleFunc("PATCH /api/me", signedIn(c.Me.UpdateMe))
	mux.HandleFunc("GET /api/stats/members", c.Me.GetMemberStats)

	// Events
	mux.HandleFunc("GET /api/events", c.Events.ListEvents)
	mux.HandleFunc("GET /api/events/{id}", c.Events.GetEvent)
	mux.HandleFunc("POST /api/events", board(c.Events.CreateEvent))
	mux.HandleFunc("PATCH /api/events/{id}", board(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", board(c.Events.DeleteEvent))

	// Testimonials
	mux.HandleFunc("GET /api/testimonials", c.Testimonials.ListTestimonials)
	mux.HandleFunc("POST /api/testimonials", signedIn(c.Testimonials.CreateTestimonial))
	mux.HandleFunc("PATCH /api/testimonials/{id}", board(c.Testimonials.UpdateTestimonial))
	mux.HandleFunc("POST /api/testimonials/{id}/approve", board(c.Testimonials.ApproveTestimonial))
	mux.HandleFunc("DELETE /api/testimonials/{id}", board(c.Testimonials.DeleteTestimonial))

	// Volunteers
	mux.HandleFunc("POST /api/volunteers", c.Volunteers.SubmitVolunteerApplication)
	mux.HandleFunc("GET /api/volunteers", board(c.Volunteers.ListVolunteerApplications))
	mux.HandleFunc("POST /api/volunteers/{id}/approve", board(c.Volunteers.ApproveVolunteerApplication))

	// Registrations
	mux.HandleFunc("POST /api/events/{id}/registrations", signedIn(c.Registrations.RegisterForEvent))
	mux.HandleFunc("GET /api/registrations/me", signedIn(c.Registrations.ListMyRegistrations))
	mux.HandleFunc("GET /api/registrations", board(c.Registrations.ListRegistrations))
	mux.HandleFunc("POST /api/registrations/{id}/approve", board(c.Registrations.ApproveRegistration))
	mux.HandleFunc("DELETE /api/registrations/{id}", signedIn(c.Registrations.DeleteRegistration))

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps mux in the middleware chain. Metrics sits directly on the
// mux so it sees the matched route pattern.
func NewHandler(mux *http.ServeMux, sessions *middleware.SessionLoader, allowedOrigins []string, logger *slog.Logger) http.Handler {
	var h http.Handler = middleware.Metrics(mux)
	h = sessions.Load(h)
	h = middleware.CORS(allowedOrigins, h)
	return middleware.LoggingMiddleware(logger, h)
}
