package handler

import (
	"net/http"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"

	"go.uber.org/zap"
)

// assetLinks serves the sub-resources shared by equipment and peripherals
type assetLinks struct {
	base
	kind        model.AssetKind
	maintenance MaintenanceService
	tickets     TicketService
	suggestions SuggestionService
}

// MaintenanceHistoryHandler lists the maintenance log of one asset
func (a *assetLinks) MaintenanceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	page := a.ResponseHelper.ParsePaginationParams(r)
	result, err := a.maintenance.History(ctx, a.kind, id, page.Repository())
	if err != nil {
		a.ErrorHandler.HandleServiceError(w, err, "retrieve maintenance history")
		return
	}

	meta := a.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	a.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		a.ResponseHelper.CreatePaginatedListResponseData("maintenance", nonNil(result.Items), meta))
}

// TicketsHandler lists the tickets raised against one asset
func (a *assetLinks) TicketsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	page := a.ResponseHelper.ParsePaginationParams(r)
	result, err := a.tickets.ForAsset(ctx, a.kind, id, page.Repository())
	if err != nil {
		a.ErrorHandler.HandleServiceError(w, err, "retrieve asset tickets")
		return
	}

	meta := a.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	a.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		a.ResponseHelper.CreatePaginatedListResponseData("tickets", nonNil(result.Items), meta))
}

// SuggestionsHandler asks the AI model for maintenance recommendations
func (a *assetLinks) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ResponseHelper.CreateRequestContext(r, SuggestionTimeout)
	defer cancel()

	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	suggestion, err := a.suggestions.Suggest(ctx, a.kind, id)
	if err != nil {
		a.ErrorHandler.HandleServiceError(w, err, "generate suggestions")
		return
	}

	a.Logger.Debug("suggestions served",
		zap.String("asset_kind", string(a.kind)),
		zap.Stringer("asset_id", id),
		zap.String("request_id", a.ResponseHelper.GetRequestIDFromContext(ctx)))
	a.ErrorHandler.SendJSONResponse(w, http.StatusOK, suggestion)
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// EquipmentHandler handles the HTTP requests for equipment
type EquipmentHandler struct {
	assetLinks
	Service EquipmentService
}

// CreateEquipmentHandler registers new equipment
func (h *EquipmentHandler) CreateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var equipment model.Equipment
	if err := h.ResponseHelper.DecodeJSON(w, r, &equipment); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	created, err := h.Service.Create(ctx, equipment)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "create equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Equipment created successfully", created)
}

// ListEquipmentHandler lists equipment with filters and pagination
func (h *EquipmentHandler) ListEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	query := r.URL.Query()
	filter := repository.EquipmentFilter{
		Status:     model.AssetStatus(query.Get("status")),
		Location:   query.Get("location"),
		AssignedTo: query.Get("assigned_to"),
		Search:     query.Get("search"),
	}

	page := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Service.List(ctx, filter, page.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve equipment")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreatePaginatedListResponseData("equipment", nonNil(result.Items), meta))
}

// GetEquipmentHandler returns one piece of equipment
func (h *EquipmentHandler) GetEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	equipment, err := h.Service.Get(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve equipment")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, equipment)
}

// UpdateEquipmentHandler replaces the editable fields of a piece of equipment
func (h *EquipmentHandler) UpdateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var equipment model.Equipment
	if err := h.ResponseHelper.DecodeJSON(w, r, &equipment); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	updated, err := h.Service.Update(ctx, id, equipment)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Equipment updated successfully", updated)
}

// DeleteEquipmentHandler removes equipment
func (h *EquipmentHandler) DeleteEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Equipment deleted successfully", map[string]string{"id": id.String()})
}

// PeripheralHandler handles the HTTP requests for peripherals
type PeripheralHandler struct {
	assetLinks
	Service PeripheralService
}

// CreatePeripheralHandler registers a new peripheral
func (h *PeripheralHandler) CreatePeripheralHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var peripheral model.Peripheral
	if err := h.ResponseHelper.DecodeJSON(w, r, &peripheral); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	created, err := h.Service.Create(ctx, peripheral)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "create peripheral")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Peripheral created successfully", created)
}

// ListPeripheralsHandler lists peripherals with filters and pagination
func (h *PeripheralHandler) ListPeripheralsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	equipmentID, err := h.ResponseHelper.QueryUUID(r, "equipment_id")
	if err != nil {
		h.ErrorHandler.HandleParameterError(w, "equipment_id", err.Error())
		return
	}

	query := r.URL.Query()
	filter := repository.PeripheralFilter{
		Type:        model.PeripheralType(query.Get("type")),
		Status:      model.AssetStatus(query.Get("status")),
		EquipmentID: equipmentID,
		Search:      query.Get("search"),
	}

	page := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Service.List(ctx, filter, page.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve peripherals")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreatePaginatedListResponseData("peripherals", nonNil(result.Items), meta))
}

// GetPeripheralHandler returns one peripheral
func (h *PeripheralHandler) GetPeripheralHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	peripheral, err := h.Service.Get(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve peripheral")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, peripheral)
}

// UpdatePeripheralHandler replaces the editable fields of a peripheral
func (h *PeripheralHandler) UpdatePeripheralHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var peripheral model.Peripheral
	if err := h.ResponseHelper.DecodeJSON(w, r, &peripheral); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	updated, err := h.Service.Update(ctx, id, peripheral)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update peripheral")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Peripheral updated successfully", updated)
}

// DeletePeripheralHandler removes a peripheral
func (h *PeripheralHandler) DeletePeripheralHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete peripheral")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Peripheral deleted successfully", map[string]string{"id": id.String()})
}
