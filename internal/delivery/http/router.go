package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventscout/internal/delivery/http/controllers"
	"eventscout/internal/delivery/http/middleware"
	"eventscout/internal/domain"

	_ "eventscout/docs"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	authController *controllers.AuthController,
	paymentController *controllers.PaymentController,
	notificationController *controllers.NotificationController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Events
	mux.HandleFunc("GET /api/events", eventController.ListEvents)
	mux.HandleFunc("GET /api/events/{id}", eventController.GetEvent)
	mux.HandleFunc("POST /api/events/load", eventController.LoadEvents)

	// Auth and preferences
	mux.HandleFunc("POST /api/auth/register", authController.Register)
	mux.HandleFunc("POST /api/auth/login", authController.Login)
	mux.HandleFunc("GET /api/auth/preferences", requireAuth(authController.GetPreferences))
	mux.HandleFunc("POST /api/auth/preferences", requireAuth(authController.UpdatePreferences))

	// Payment
	mux.HandleFunc("POST /api/payment/mock-upgrade", requireAuth(paymentController.MockUpgrade))

	// Notifications
	mux.HandleFunc("GET /api/notifications", requireAuth(notificationController.ListNotifications))

	// Operational endpoints
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
