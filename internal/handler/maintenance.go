package handler

import (
	"net/http"
	"strconv"
	"time"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
)

// MaxDueWindowDays bounds the within_days parameter of the due listing
const MaxDueWindowDays = 366

// MaintenanceHandler handles the HTTP requests for the maintenance log
type MaintenanceHandler struct {
	base
	Service MaintenanceService
}

// RecordMaintenanceHandler logs maintenance work
func (h *MaintenanceHandler) RecordMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var record model.MaintenanceRecord
	if err := h.ResponseHelper.DecodeJSON(w, r, &record); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	created, err := h.Service.Record(ctx, record)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "record maintenance")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Maintenance recorded successfully", created)
}

// ListMaintenanceHandler lists the maintenance log with filters and pagination
func (h *MaintenanceHandler) ListMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	query := r.URL.Query()
	filter := repository.MaintenanceFilter{
		AssetKind: model.AssetKind(query.Get("asset_kind")),
		Kind:      model.MaintenanceKind(query.Get("kind")),
	}

	var err error
	if filter.AssetID, err = h.ResponseHelper.QueryUUID(r, "asset_id"); err != nil {
		h.ErrorHandler.HandleParameterError(w, "asset_id", err.Error())
		return
	}
	if filter.Since, err = h.ResponseHelper.QueryTime(r, "since"); err != nil {
		h.ErrorHandler.HandleParameterError(w, "since", err.Error())
		return
	}
	if filter.Until, err = h.ResponseHelper.QueryTime(r, "until"); err != nil {
		h.ErrorHandler.HandleParameterError(w, "until", err.Error())
		return
	}

	page := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Service.List(ctx, filter, page.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve maintenance records")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreatePaginatedListResponseData("maintenance", nonNil(result.Items), meta))
}

// DueMaintenanceHandler lists assets that are overdue or due within within_days
func (h *MaintenanceHandler) DueMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	var within time.Duration
	if raw := r.URL.Query().Get("within_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 || days > MaxDueWindowDays {
			h.ErrorHandler.HandleParameterError(w, "within_days",
				"must be a whole number between 0 and "+strconv.Itoa(MaxDueWindowDays))
			return
		}
		within = time.Duration(days) * 24 * time.Hour
	}

	items, err := h.Service.Due(ctx, within)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve due maintenance")
		return
	}

	overdue := 0
	for _, item := range items {
		if item.Overdue {
			overdue++
		}
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"due":           nonNil(items),
		"count":         len(items),
		"overdue_count": overdue,
	})
}

// GetMaintenanceHandler returns one maintenance record
func (h *MaintenanceHandler) GetMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	record, err := h.Service.Get(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve maintenance record")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, record)
}

// DeleteMaintenanceHandler removes a maintenance record
func (h *MaintenanceHandler) DeleteMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete maintenance record")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Maintenance record deleted successfully", map[string]string{"id": id.String()})
}
