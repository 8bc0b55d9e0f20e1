package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tailor-backend/internal/handlers"
	"tailor-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	customerHandler *handlers.CustomerHandler,
	measurementHandler *handlers.MeasurementHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	profileHandler *handlers.ProfileHandler,
	presetHandler *handlers.PresetHandler,
	dashboardHandler *handlers.DashboardHandler,
	liveHandler *handlers.LiveHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	// Runs after matching so the route template is available as a label.
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics (no auth)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Live queries authenticate inside the socket, so the upgrade is public.
	r.HandleFunc("/api/live", liveHandler.ServeLive).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Customers
	api.HandleFunc("/customers", customerHandler.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", customerHandler.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/{id}", customerHandler.GetCustomer).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.UpdateCustomer).Methods("PUT", "PATCH")
	api.HandleFunc("/customers/{id}", customerHandler.DeleteCustomer).Methods("DELETE")

	// Measurements
	api.HandleFunc("/measurements", measurementHandler.ListMeasurements).Methods("GET")
	api.HandleFunc("/measurements", measurementHandler.CreateMeasurement).Methods("POST")
	api.HandleFunc("/measurements/fields", measurementHandler.Fields).Methods("GET")
	api.HandleFunc("/measurements/{id}", measurementHandler.GetMeasurement).Methods("GET")
	api.HandleFunc("/measurements/{id}", measurementHandler.UpdateMeasurement).Methods("PUT", "PATCH")
	api.HandleFunc("/measurements/{id}", measurementHandler.DeleteMeasurement).Methods("DELETE")

	// Orders
	api.HandleFunc("/orders", orderHandler.ListOrders).Methods("GET")
	api.HandleFunc("/orders", orderHandler.CreateOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", orderHandler.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", orderHandler.UpdateOrder).Methods("PUT", "PATCH")
	api.HandleFunc("/orders/{id}", orderHandler.DeleteOrder).Methods("DELETE")
	api.HandleFunc("/orders/{id}/collect", orderHandler.CollectOrder).Methods("POST")
	api.HandleFunc("/orders/{id}/receipt", orderHandler.Receipt).Methods("GET")

	// Payments
	api.HandleFunc("/payments", paymentHandler.ListPayments).Methods("GET")
	api.HandleFunc("/payments", paymentHandler.CreatePayment).Methods("POST")
	api.HandleFunc("/payments/{id}", paymentHandler.GetPayment).Methods("GET")
	api.HandleFunc("/payments/{id}", paymentHandler.UpdatePayment).Methods("PUT", "PATCH")
	api.HandleFunc("/payments/{id}", paymentHandler.DeletePayment).Methods("DELETE")

	// Profile and measurement settings
	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT", "PATCH")
	api.HandleFunc("/presets", presetHandler.ListPresets).Methods("GET")
	api.HandleFunc("/presets", presetHandler.SavePreset).Methods("POST")
	api.HandleFunc("/presets/{id}", presetHandler.DeletePreset).Methods("DELETE")
	api.HandleFunc("/custom-measurements", presetHandler.ListCustomMeasurements).Methods("GET")
	api.HandleFunc("/custom-measurements", presetHandler.CreateCustomMeasurement).Methods("POST")
	api.HandleFunc("/custom-measurements/{id}", presetHandler.DeleteCustomMeasurement).Methods("DELETE")

	// Summaries
	api.HandleFunc("/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/balances", dashboardHandler.GetBalances).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
