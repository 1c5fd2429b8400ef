package handler

import (
	"net/http"
	"time"

	"maintenance-tracker-api/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Constants for timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
	SuggestionTimeout  = 60 * time.Second
	HealthCheckTimeout = 3 * time.Second
)

// Services groups the dependencies of all handlers
type Services struct {
	Equipment   EquipmentService
	Peripherals PeripheralService
	Maintenance MaintenanceService
	Tickets     TicketService
	Dashboard   DashboardService
	Suggestions SuggestionService
}

// Handlers holds one handler per resource
type Handlers struct {
	Equipment   *EquipmentHandler
	Peripherals *PeripheralHandler
	Maintenance *MaintenanceHandler
	Tickets     *TicketHandler
	Dashboard   *DashboardHandler
	Health      *HealthHandler
}

// base carries the helpers every handler uses
type base struct {
	Logger         *zap.Logger
	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func newBase(logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// pathID parses the {id} route variable, writing a 400 response when it is invalid
func (b base) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return b.ErrorHandler.ParseAndValidateUUID(w, mux.Vars(r)["id"])
}

// NewHandlers wires handlers to services. checks feed the health endpoint.
func NewHandlers(s Services, checks map[string]HealthCheck, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := newBase(logger.Named("http"))

	links := func(kind model.AssetKind) assetLinks {
		return assetLinks{
			base:        b,
			kind:        kind,
			maintenance: s.Maintenance,
			tickets:     s.Tickets,
			suggestions: s.Suggestions,
		}
	}

	return &Handlers{
		Equipment:   &EquipmentHandler{assetLinks: links(model.AssetKindEquipment), Service: s.Equipment},
		Peripherals: &PeripheralHandler{assetLinks: links(model.AssetKindPeripheral), Service: s.Peripherals},
		Maintenance: &MaintenanceHandler{base: b, Service: s.Maintenance},
		Tickets:     &TicketHandler{base: b, Service: s.Tickets},
		Dashboard:   &DashboardHandler{base: b, Service: s.Dashboard},
		Health:      &HealthHandler{base: b, checks: checks},
	}
}
