package router

import (
	"net/http"

	"maintenance-tracker-api/internal/config"
	"maintenance-tracker-api/internal/handler"
	"maintenance-tracker-api/internal/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new router and sets up the routes with security middleware.
func NewRouter(h *handler.Handlers, cfg *config.Config, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)
	loggingMW := middleware.NewLoggingMiddleware(logger)

	// Apply global middleware in order
	r.Use(loggingMW.Recover)
	r.Use(securityMW.RequestID)
	r.Use(securityMW.TrustedProxy)
	r.Use(loggingMW.LogRequests)
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.RateLimit)

	api := r.PathPrefix("/api/v1").Subrouter()

	// AI suggestions run under their own, longer deadline
	api.HandleFunc("/equipment/{id}/suggestions", h.Equipment.SuggestionsHandler).Methods("POST")
	api.HandleFunc("/peripherals/{id}/suggestions", h.Peripherals.SuggestionsHandler).Methods("POST")

	bounded := api.NewRoute().Subrouter()
	bounded.Use(securityMW.RequestTimeout)

	// Equipment
	bounded.HandleFunc("/equipment", h.Equipment.CreateEquipmentHandler).Methods("POST")
	bounded.HandleFunc("/equipment", h.Equipment.ListEquipmentHandler).Methods("GET")
	bounded.HandleFunc("/equipment/{id}", h.Equipment.GetEquipmentHandler).Methods("GET")
	bounded.HandleFunc("/equipment/{id}", h.Equipment.UpdateEquipmentHandler).Methods("PUT")
	bounded.HandleFunc("/equipment/{id}", h.Equipment.DeleteEquipmentHandler).Methods("DELETE")
	bounded.HandleFunc("/equipment/{id}/maintenance", h.Equipment.MaintenanceHistoryHandler).Methods("GET")
	bounded.HandleFunc("/equipment/{id}/tickets", h.Equipment.TicketsHandler).Methods("GET")

	// Peripherals
	bounded.HandleFunc("/peripherals", h.Peripherals.CreatePeripheralHandler).Methods("POST")
	bounded.HandleFunc("/peripherals", h.Peripherals.ListPeripheralsHandler).Methods("GET")
	bounded.HandleFunc("/peripherals/{id}", h.Peripherals.GetPeripheralHandler).Methods("GET")
	bounded.HandleFunc("/peripherals/{id}", h.Peripherals.UpdatePeripheralHandler).Methods("PUT")
	bounded.HandleFunc("/peripherals/{id}", h.Peripherals.DeletePeripheralHandler).Methods("DELETE")
	bounded.HandleFunc("/peripherals/{id}/maintenance", h.Peripherals.MaintenanceHistoryHandler).Methods("GET")
	bounded.HandleFunc("/peripherals/{id}/tickets", h.Peripherals.TicketsHandler).Methods("GET")

	// Maintenance log; /due must be registered before /{id}
	bounded.HandleFunc("/maintenance", h.Maintenance.RecordMaintenanceHandler).Methods("POST")
	bounded.HandleFunc("/maintenance", h.Maintenance.ListMaintenanceHandler).Methods("GET")
	bounded.HandleFunc("/maintenance/due", h.Maintenance.DueMaintenanceHandler).Methods("GET")
	bounded.HandleFunc("/maintenance/{id}", h.Maintenance.GetMaintenanceHandler).Methods("GET")
	bounded.HandleFunc("/maintenance/{id}", h.Maintenance.DeleteMaintenanceHandler).Methods("DELETE")

	// Tickets
	bounded.HandleFunc("/tickets", h.Tickets.CreateTicketHandler).Methods("POST")
	bounded.HandleFunc("/tickets", h.Tickets.ListTicketsHandler).Methods("GET")
	bounded.HandleFunc("/tickets/{id}", h.Tickets.GetTicketHandler).Methods("GET")
	bounded.HandleFunc("/tickets/{id}", h.Tickets.UpdateTicketHandler).Methods("PUT")
	bounded.HandleFunc("/tickets/{id}", h.Tickets.DeleteTicketHandler).Methods("DELETE")
	bounded.HandleFunc("/tickets/{id}/status", h.Tickets.ChangeStatusHandler).Methods("PUT")
	bounded.HandleFunc("/tickets/{id}/assign", h.Tickets.AssignTicketHandler).Methods("PUT")

	// Dashboard and health check
	bounded.HandleFunc("/dashboard", h.Dashboard.GetDashboardHandler).Methods("GET")
	bounded.HandleFunc("/health", h.Health.HealthHandler).Methods("GET")

	// CORS preflight for every API path. A MatcherFunc rather than Methods
	// keeps unknown paths at 404 instead of 405.
	api.PathPrefix("/").MatcherFunc(isPreflight).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func isPreflight(r *http.Request, _ *mux.RouteMatch) bool {
	return r.Method == http.MethodOptions
}
