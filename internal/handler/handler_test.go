package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Mock implementations for testing

type MockEquipmentService struct {
	CreateFunc func(ctx context.Context, e model.Equipment) (*model.Equipment, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*model.Equipment, error)
	ListFunc   func(ctx context.Context, f repository.EquipmentFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Equipment], error)
	UpdateFunc func(ctx context.Context, id uuid.UUID, e model.Equipment) (*model.Equipment, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockEquipmentService) Create(ctx context.Context, e model.Equipment) (*model.Equipment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	return &e, nil
}

func (m *MockEquipmentService) Get(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("equipment")
}

func (m *MockEquipmentService) List(ctx context.Context, f repository.EquipmentFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Equipment], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, p)
	}
	return &repository.PaginatedResult[model.Equipment]{}, nil
}

func (m *MockEquipmentService) Update(ctx context.Context, id uuid.UUID, e model.Equipment) (*model.Equipment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, e)
	}
	e.ID = id
	return &e, nil
}

func (m *MockEquipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockPeripheralService struct {
	ListFunc func(ctx context.Context, f repository.PeripheralFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Peripheral], error)
}

func (m *MockPeripheralService) Create(_ context.Context, p model.Peripheral) (*model.Peripheral, error) {
	return &p, nil
}

func (m *MockPeripheralService) Get(context.Context, uuid.UUID) (*model.Peripheral, error) {
	return nil, apperrors.NotFoundError("peripheral")
}

func (m *MockPeripheralService) List(ctx context.Context, f repository.PeripheralFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Peripheral], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, p)
	}
	return &repository.PaginatedResult[model.Peripheral]{}, nil
}

func (m *MockPeripheralService) Update(_ context.Context, _ uuid.UUID, p model.Peripheral) (*model.Peripheral, error) {
	return &p, nil
}

func (m *MockPeripheralService) Delete(context.Context, uuid.UUID) error { return nil }

type MockMaintenanceService struct {
	RecordFunc  func(ctx context.Context, m model.MaintenanceRecord) (*model.MaintenanceRecord, error)
	ListFunc    func(ctx context.Context, f repository.MaintenanceFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error)
	HistoryFunc func(ctx context.Context, kind model.AssetKind, id uuid.UUID, p repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error)
	DueFunc     func(ctx context.Context, within time.Duration) ([]model.DueItem, error)
}

func (m *MockMaintenanceService) Record(ctx context.Context, rec model.MaintenanceRecord) (*model.MaintenanceRecord, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, rec)
	}
	return &rec, nil
}

func (m *MockMaintenanceService) Get(context.Context, uuid.UUID) (*model.MaintenanceRecord, error) {
	return nil, apperrors.NotFoundError("maintenance record")
}

func (m *MockMaintenanceService) List(ctx context.Context, f repository.MaintenanceFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, p)
	}
	return &repository.PaginatedResult[model.MaintenanceRecord]{}, nil
}

func (m *MockMaintenanceService) History(ctx context.Context, kind model.AssetKind, id uuid.UUID, p repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, kind, id, p)
	}
	return &repository.PaginatedResult[model.MaintenanceRecord]{}, nil
}

func (m *MockMaintenanceService) Delete(context.Context, uuid.UUID) error { return nil }

func (m *MockMaintenanceService) Due(ctx context.Context, within time.Duration) ([]model.DueItem, error) {
	if m.DueFunc != nil {
		return m.DueFunc(ctx, within)
	}
	return nil, nil
}

type MockTicketService struct {
	ChangeStatusFunc func(ctx context.Context, id uuid.UUID, status model.TicketStatus, resolution string) (*model.Ticket, error)
	AssignFunc       func(ctx context.Context, id uuid.UUID, engineer string) (*model.Ticket, error)
	ListFunc         func(ctx context.Context, f repository.TicketFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error)
}

func (m *MockTicketService) Create(_ context.Context, t model.Ticket) (*model.Ticket, error) {
	return &t, nil
}

func (m *MockTicketService) Get(context.Context, uuid.UUID) (*model.Ticket, error) {
	return nil, apperrors.NotFoundError("ticket")
}

func (m *MockTicketService) List(ctx context.Context, f repository.TicketFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, p)
	}
	return &repository.PaginatedResult[model.Ticket]{}, nil
}

func (m *MockTicketService) ForAsset(context.Context, model.AssetKind, uuid.UUID, repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error) {
	return &repository.PaginatedResult[model.Ticket]{}, nil
}

func (m *MockTicketService) Update(_ context.Context, _ uuid.UUID, t model.Ticket) (*model.Ticket, error) {
	return &t, nil
}

func (m *MockTicketService) Delete(context.Context, uuid.UUID) error { return nil }

func (m *MockTicketService) ChangeStatus(ctx context.Context, id uuid.UUID, status model.TicketStatus, resolution string) (*model.Ticket, error) {
	if m.ChangeStatusFunc != nil {
		return m.ChangeStatusFunc(ctx, id, status, resolution)
	}
	return &model.Ticket{ID: id, Status: status, Resolution: resolution}, nil
}

func (m *MockTicketService) Assign(ctx context.Context, id uuid.UUID, engineer string) (*model.Ticket, error) {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, id, engineer)
	}
	return &model.Ticket{ID: id, AssignedEngineer: engineer, Status: model.TicketInProgress}, nil
}

type MockSuggestionService struct {
	SuggestFunc func(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*model.Suggestion, error)
}

func (m *MockSuggestionService) Suggest(ctx context.Context, kind model.AssetKind, id uuid.UUID) (*model.Suggestion, error) {
	return m.SuggestFunc(ctx, kind, id)
}

type MockDashboardService struct {
	SummaryFunc func(ctx context.Context) (*model.Dashboard, error)
}

func (m *MockDashboardService) Summary(ctx context.Context) (*model.Dashboard, error) {
	return m.SummaryFunc(ctx)
}

// Helper functions for tests

type testMocks struct {
	equipment   *MockEquipmentService
	peripherals *MockPeripheralService
	maintenance *MockMaintenanceService
	tickets     *MockTicketService
	suggestions *MockSuggestionService
	dashboard   *MockDashboardService
}

func createTestHandlers(checks map[string]HealthCheck) (*Handlers, *testMocks) {
	m := &testMocks{
		equipment:   &MockEquipmentService{},
		peripherals: &MockPeripheralService{},
		maintenance: &MockMaintenanceService{},
		tickets:     &MockTicketService{},
		suggestions: &MockSuggestionService{},
		dashboard:   &MockDashboardService{},
	}
	h := NewHandlers(Services{
		Equipment:   m.equipment,
		Peripherals: m.peripherals,
		Maintenance: m.maintenance,
		Tickets:     m.tickets,
		Dashboard:   m.dashboard,
		Suggestions: m.suggestions,
	}, checks, nil)
	return h, m
}

func createJSONRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal error response: %v", err)
	}
	return response
}

func sampleEquipment() model.Equipment {
	return model.Equipment{
		ID:       uuid.New(),
		Name:     "Reception Desktop",
		AssetTag: "PC-0001",
		Status:   model.StatusActive,
	}
}

// Equipment

func TestCreateEquipmentHandler_Success(t *testing.T) {
	h, m := createTestHandlers(nil)
	equipment := sampleEquipment()
	equipment.ID = uuid.Nil

	m.equipment.CreateFunc = func(_ context.Context, e model.Equipment) (*model.Equipment, error) {
		if e.AssetTag != "PC-0001" {
			t.Errorf("Unexpected equipment data: got %+v", e)
		}
		e.ID = uuid.New()
		return &e, nil
	}

	rr := httptest.NewRecorder()
	h.Equipment.CreateEquipmentHandler(rr, createJSONRequest("POST", "/api/v1/equipment", equipment))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, rr.Code)
	}

	var response struct {
		Message string          `json:"message"`
		Data    model.Equipment `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Message != "Equipment created successfully" {
		t.Errorf("Expected success message, got %s", response.Message)
	}
	if response.Data.ID == uuid.Nil {
		t.Error("Expected created equipment to carry an ID")
	}
}

func TestCreateEquipmentHandler_InvalidJSON(t *testing.T) {
	h, _ := createTestHandlers(nil)

	req := httptest.NewRequest("POST", "/api/v1/equipment", strings.NewReader("invalid json"))
	rr := httptest.NewRecorder()
	h.Equipment.CreateEquipmentHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if response := decodeError(t, rr); response.Code != "INVALID_JSON" {
		t.Errorf("Expected INVALID_JSON, got %s", response.Code)
	}
}

func TestCreateEquipmentHandler_ValidationError(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.equipment.CreateFunc = func(context.Context, model.Equipment) (*model.Equipment, error) {
		return nil, apperrors.ValidationErrorWithDetails("invalid equipment", map[string]string{"name": "name is required"})
	}

	rr := httptest.NewRecorder()
	h.Equipment.CreateEquipmentHandler(rr, createJSONRequest("POST", "/api/v1/equipment", model.Equipment{}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	response := decodeError(t, rr)
	if response.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", response.Code)
	}
	if response.Details["name"] != "name is required" {
		t.Errorf("Expected field details, got %v", response.Details)
	}
}

func TestCreateEquipmentHandler_UnexpectedError(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.equipment.CreateFunc = func(context.Context, model.Equipment) (*model.Equipment, error) {
		return nil, errors.New("boom")
	}

	rr := httptest.NewRecorder()
	h.Equipment.CreateEquipmentHandler(rr, createJSONRequest("POST", "/api/v1/equipment", sampleEquipment()))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if response := decodeError(t, rr); response.Code != "INTERNAL_ERROR" {
		t.Errorf("Expected INTERNAL_ERROR, got %s", response.Code)
	}
}

func TestListEquipmentHandler_FiltersAndPagination(t *testing.T) {
	h, m := createTestHandlers(nil)
	items := []model.Equipment{sampleEquipment()}

	m.equipment.ListFunc = func(_ context.Context, f repository.EquipmentFilter, p repository.PaginationParams) (*repository.PaginatedResult[model.Equipment], error) {
		if f.Status != model.StatusInRepair || f.Location != "Lab 2" || f.Search != "dell" {
			t.Errorf("Unexpected filter: %+v", f)
		}
		if p.Offset != 5 || p.Limit != 5 {
			t.Errorf("Expected offset 5 limit 5, got %+v", p)
		}
		return &repository.PaginatedResult[model.Equipment]{Items: items, TotalCount: 11}, nil
	}

	req := httptest.NewRequest("GET", "/api/v1/equipment?status=in_repair&location=Lab+2&search=dell&page=2&page_size=5", nil)
	rr := httptest.NewRecorder()
	h.Equipment.ListEquipmentHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	var response struct {
		Equipment  []model.Equipment `json:"equipment"`
		Pagination PaginationMeta    `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Equipment) != 1 {
		t.Errorf("Expected 1 item, got %d", len(response.Equipment))
	}
	if response.Pagination.TotalPages != 3 || !response.Pagination.HasNext || !response.Pagination.HasPrevious {
		t.Errorf("Unexpected pagination: %+v", response.Pagination)
	}
}

func TestListEquipmentHandler_EmptyListIsArray(t *testing.T) {
	h, _ := createTestHandlers(nil)

	rr := httptest.NewRecorder()
	h.Equipment.ListEquipmentHandler(rr, httptest.NewRequest("GET", "/api/v1/equipment", nil))

	if !strings.Contains(rr.Body.String(), `"equipment":[]`) {
		t.Errorf("Expected empty JSON array, got %s", rr.Body.String())
	}
}

func TestGetEquipmentHandler_InvalidUUID(t *testing.T) {
	h, _ := createTestHandlers(nil)

	rr := httptest.NewRecorder()
	h.Equipment.GetEquipmentHandler(rr, withID(httptest.NewRequest("GET", "/api/v1/equipment/x", nil), "invalid-uuid"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if response := decodeError(t, rr); response.Code != "INVALID_UUID" {
		t.Errorf("Expected INVALID_UUID, got %s", response.Code)
	}
}

func TestGetEquipmentHandler_NotFound(t *testing.T) {
	h, _ := createTestHandlers(nil)

	rr := httptest.NewRecorder()
	h.Equipment.GetEquipmentHandler(rr, withID(httptest.NewRequest("GET", "/", nil), uuid.NewString()))

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestDeleteEquipmentHandler_Conflict(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.equipment.DeleteFunc = func(context.Context, uuid.UUID) error {
		return apperrors.ConflictError("equipment has open tickets").WithDetail("open_tickets", "2")
	}

	rr := httptest.NewRecorder()
	h.Equipment.DeleteEquipmentHandler(rr, withID(httptest.NewRequest("DELETE", "/", nil), uuid.NewString()))

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, rr.Code)
	}
	if response := decodeError(t, rr); response.Details["open_tickets"] != "2" {
		t.Errorf("Expected open_tickets detail, got %v", response.Details)
	}
}

func TestUpdateEquipmentHandler_Success(t *testing.T) {
	h, _ := createTestHandlers(nil)
	id := uuid.New()

	rr := httptest.NewRecorder()
	h.Equipment.UpdateEquipmentHandler(rr, withID(createJSONRequest("PUT", "/", sampleEquipment()), id.String()))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), id.String()) {
		t.Errorf("Expected response to contain the path ID, got %s", rr.Body.String())
	}
}

// Asset sub-resources

func TestEquipmentMaintenanceHistoryHandler_PassesKind(t *testing.T) {
	h, m := createTestHandlers(nil)
	id := uuid.New()

	m.maintenance.HistoryFunc = func(_ context.Context, kind model.AssetKind, got uuid.UUID, _ repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
		if kind != model.AssetKindEquipment || got != id {
			t.Errorf("Unexpected history request: %s %s", kind, got)
		}
		return &repository.PaginatedResult[model.MaintenanceRecord]{}, nil
	}

	rr := httptest.NewRecorder()
	h.Equipment.MaintenanceHistoryHandler(rr, withID(httptest.NewRequest("GET", "/", nil), id.String()))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"maintenance":[]`) {
		t.Errorf("Expected maintenance key, got %s", rr.Body.String())
	}
}

func TestSuggestionsHandler(t *testing.T) {
	h, m := createTestHandlers(nil)
	id := uuid.New()

	m.suggestions.SuggestFunc = func(_ context.Context, kind model.AssetKind, got uuid.UUID) (*model.Suggestion, error) {
		if kind != model.AssetKindPeripheral {
			t.Errorf("Expected peripheral kind, got %s", kind)
		}
		return &model.Suggestion{AssetKind: kind, AssetID: got, Items: []string{"Replace toner"}}, nil
	}

	rr := httptest.NewRecorder()
	h.Peripherals.SuggestionsHandler(rr, withID(httptest.NewRequest("POST", "/", nil), id.String()))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	var suggestion model.Suggestion
	if err := json.Unmarshal(rr.Body.Bytes(), &suggestion); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(suggestion.Items) != 1 || suggestion.Items[0] != "Replace toner" {
		t.Errorf("Unexpected suggestions: %v", suggestion.Items)
	}
}

func TestSuggestionsHandler_Disabled(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.suggestions.SuggestFunc = func(context.Context, model.AssetKind, uuid.UUID) (*model.Suggestion, error) {
		return nil, apperrors.ServiceUnavailableError("maintenance suggestions are disabled")
	}

	rr := httptest.NewRecorder()
	h.Equipment.SuggestionsHandler(rr, withID(httptest.NewRequest("POST", "/", nil), uuid.NewString()))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

// Peripherals

func TestListPeripheralsHandler_InvalidEquipmentID(t *testing.T) {
	h, _ := createTestHandlers(nil)

	rr := httptest.NewRecorder()
	h.Peripherals.ListPeripheralsHandler(rr, httptest.NewRequest("GET", "/api/v1/peripherals?equipment_id=nope", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if response := decodeError(t, rr); response.Details["equipment_id"] == "" {
		t.Errorf("Expected equipment_id detail, got %v", response.Details)
	}
}

func TestListPeripheralsHandler_Filter(t *testing.T) {
	h, m := createTestHandlers(nil)
	equipmentID := uuid.New()

	m.peripherals.ListFunc = func(_ context.Context, f repository.PeripheralFilter, _ repository.PaginationParams) (*repository.PaginatedResult[model.Peripheral], error) {
		if f.Type != model.PeripheralPrinter || f.EquipmentID == nil || *f.EquipmentID != equipmentID {
			t.Errorf("Unexpected filter: %+v", f)
		}
		return &repository.PaginatedResult[model.Peripheral]{}, nil
	}

	rr := httptest.NewRecorder()
	h.Peripherals.ListPeripheralsHandler(rr, httptest.NewRequest("GET", "/api/v1/peripherals?type=printer&equipment_id="+equipmentID.String(), nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}

// Maintenance

func TestDueMaintenanceHandler(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.maintenance.DueFunc = func(_ context.Context, within time.Duration) ([]model.DueItem, error) {
		if within != 30*24*time.Hour {
			t.Errorf("Expected 30 day window, got %s", within)
		}
		return []model.DueItem{{AssetTag: "PC-1", Overdue: true}, {AssetTag: "PC-2"}}, nil
	}

	rr := httptest.NewRecorder()
	h.Maintenance.DueMaintenanceHandler(rr, httptest.NewRequest("GET", "/api/v1/maintenance/due?within_days=30", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	var response struct {
		Count        int `json:"count"`
		OverdueCount int `json:"overdue_count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Count != 2 || response.OverdueCount != 1 {
		t.Errorf("Unexpected counts: %+v", response)
	}
}

func TestDueMaintenanceHandler_InvalidWindow(t *testing.T) {
	h, _ := createTestHandlers(nil)

	for _, q := range []string{"abc", "-1", "1000"} {
		rr := httptest.NewRecorder()
		h.Maintenance.DueMaintenanceHandler(rr, httptest.NewRequest("GET", "/api/v1/maintenance/due?within_days="+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("within_days=%s: expected status code %d, got %d", q, http.StatusBadRequest, rr.Code)
		}
	}
}

func TestListMaintenanceHandler_ParsesDates(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.maintenance.ListFunc = func(_ context.Context, f repository.MaintenanceFilter, _ repository.PaginationParams) (*repository.PaginatedResult[model.MaintenanceRecord], error) {
		if f.Since == nil || !f.Since.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected since: %v", f.Since)
		}
		if f.Until == nil || f.Until.Hour() != 12 {
			t.Errorf("Unexpected until: %v", f.Until)
		}
		return &repository.PaginatedResult[model.MaintenanceRecord]{}, nil
	}

	rr := httptest.NewRecorder()
	h.Maintenance.ListMaintenanceHandler(rr, httptest.NewRequest("GET", "/api/v1/maintenance?since=2025-01-01&until=2025-02-01T12:00:00Z", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Maintenance.ListMaintenanceHandler(rr, httptest.NewRequest("GET", "/api/v1/maintenance?since=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRecordMaintenanceHandler_BodyTooLarge(t *testing.T) {
	h, _ := createTestHandlers(nil)
	body := `{"description":"` + strings.Repeat("x", MaxBodyBytes) + `"}`

	rr := httptest.NewRecorder()
	h.Maintenance.RecordMaintenanceHandler(rr, httptest.NewRequest("POST", "/api/v1/maintenance", strings.NewReader(body)))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status code %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
}

// Tickets

func TestChangeStatusHandler(t *testing.T) {
	h, m := createTestHandlers(nil)
	id := uuid.New()

	m.tickets.ChangeStatusFunc = func(_ context.Context, got uuid.UUID, status model.TicketStatus, resolution string) (*model.Ticket, error) {
		if got != id || status != model.TicketResolved || resolution != "Replaced fuser" {
			t.Errorf("Unexpected status change: %s %s %q", got, status, resolution)
		}
		return &model.Ticket{ID: id, Status: status, Resolution: resolution}, nil
	}

	rr := httptest.NewRecorder()
	req := withID(createJSONRequest("PUT", "/", StatusRequest{Status: model.TicketResolved, Resolution: "Replaced fuser"}), id.String())
	h.Tickets.ChangeStatusHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestChangeStatusHandler_InvalidTransition(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.tickets.ChangeStatusFunc = func(context.Context, uuid.UUID, model.TicketStatus, string) (*model.Ticket, error) {
		return nil, apperrors.InvalidTransitionError("closed", "open")
	}

	rr := httptest.NewRecorder()
	h.Tickets.ChangeStatusHandler(rr, withID(createJSONRequest("PUT", "/", StatusRequest{Status: model.TicketOpen}), uuid.NewString()))

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, rr.Code)
	}
	response := decodeError(t, rr)
	if response.Code != "INVALID_STATE_TRANSITION" || response.Details["from"] != "closed" {
		t.Errorf("Unexpected error response: %+v", response)
	}
}

func TestAssignTicketHandler(t *testing.T) {
	h, _ := createTestHandlers(nil)

	rr := httptest.NewRecorder()
	h.Tickets.AssignTicketHandler(rr, withID(createJSONRequest("PUT", "/", AssignRequest{AssignedEngineer: "Jo Park"}), uuid.NewString()))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"assigned_engineer":"Jo Park"`) {
		t.Errorf("Expected engineer in response, got %s", rr.Body.String())
	}
}

func TestListTicketsHandler_OpenFlag(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.tickets.ListFunc = func(_ context.Context, f repository.TicketFilter, _ repository.PaginationParams) (*repository.PaginatedResult[model.Ticket], error) {
		if !f.OpenOnly || f.Priority != model.PriorityHigh {
			t.Errorf("Unexpected filter: %+v", f)
		}
		return &repository.PaginatedResult[model.Ticket]{}, nil
	}

	rr := httptest.NewRecorder()
	h.Tickets.ListTicketsHandler(rr, httptest.NewRequest("GET", "/api/v1/tickets?open=true&priority=high", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Tickets.ListTicketsHandler(rr, httptest.NewRequest("GET", "/api/v1/tickets?open=maybe", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

// Dashboard and health

func TestGetDashboardHandler_Timeout(t *testing.T) {
	h, m := createTestHandlers(nil)
	m.dashboard.SummaryFunc = func(context.Context) (*model.Dashboard, error) {
		return nil, context.DeadlineExceeded
	}

	rr := httptest.NewRecorder()
	h.Dashboard.GetDashboardHandler(rr, httptest.NewRequest("GET", "/api/v1/dashboard", nil))

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("Expected status code %d, got %d", http.StatusGatewayTimeout, rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	h, _ := createTestHandlers(map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
	})

	rr := httptest.NewRecorder()
	h.Health.HealthHandler(rr, httptest.NewRequest("GET", "/api/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Service is healthy") {
		t.Errorf("Expected healthy message, got %s", rr.Body.String())
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	h, _ := createTestHandlers(map[string]HealthCheck{
		"store":    func(context.Context) error { return nil },
		"notifier": func(context.Context) error { return errors.New("unreachable") },
	})

	rr := httptest.NewRecorder()
	h.Health.HealthHandler(rr, httptest.NewRequest("GET", "/api/v1/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status code %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	var response struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "degraded" || response.Dependencies["notifier"] != "unhealthy" || response.Dependencies["store"] != "healthy" {
		t.Errorf("Unexpected health response: %+v", response)
	}
}

func TestCalculatePaginationMeta(t *testing.T) {
	rh := NewResponseHelper()

	meta := rh.CalculatePaginationMeta(PaginationParams{Page: 1, PageSize: 10}, 0)
	if meta.TotalPages != 1 || meta.HasNext || meta.HasPrevious || meta.NextPage != nil {
		t.Errorf("Unexpected meta for empty result: %+v", meta)
	}

	meta = rh.CalculatePaginationMeta(PaginationParams{Page: 2, PageSize: 10}, 25)
	if meta.TotalPages != 3 || *meta.NextPage != 3 || *meta.PreviousPage != 1 {
		t.Errorf("Unexpected meta: %+v", meta)
	}
}

func TestParsePaginationParams_Clamps(t *testing.T) {
	rh := NewResponseHelper()

	p := rh.ParsePaginationParams(httptest.NewRequest("GET", "/?page=0&page_size=500", nil))
	if p.Page != 1 || p.PageSize != DefaultPageSize || p.Offset != 0 {
		t.Errorf("Expected defaults, got %+v", p)
	}

	p = rh.ParsePaginationParams(httptest.NewRequest("GET", "/?page=3&page_size=20", nil))
	if p.Offset != 40 || p.Limit != 20 {
		t.Errorf("Unexpected params: %+v", p)
	}
}
