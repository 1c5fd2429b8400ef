package handler

import (
	"net/http"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/repository"
)

// TicketHandler handles the HTTP requests for support tickets
type TicketHandler struct {
	base
	Service TicketService
}

// StatusRequest is the body of a ticket status change
type StatusRequest struct {
	Status     model.TicketStatus `json:"status"`
	Resolution string             `json:"resolution,omitempty"`
}

// AssignRequest is the body of a ticket assignment
type AssignRequest struct {
	AssignedEngineer string `json:"assigned_engineer"`
}

// CreateTicketHandler opens a ticket
func (h *TicketHandler) CreateTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var ticket model.Ticket
	if err := h.ResponseHelper.DecodeJSON(w, r, &ticket); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	created, err := h.Service.Create(ctx, ticket)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "create ticket")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Ticket created successfully", created)
}

// ListTicketsHandler lists tickets with filters and pagination
func (h *TicketHandler) ListTicketsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	query := r.URL.Query()
	filter := repository.TicketFilter{
		Status:           model.TicketStatus(query.Get("status")),
		Priority:         model.TicketPriority(query.Get("priority")),
		AssignedEngineer: query.Get("assigned_engineer"),
		AssetKind:        model.AssetKind(query.Get("asset_kind")),
	}

	var err error
	if filter.AssetID, err = h.ResponseHelper.QueryUUID(r, "asset_id"); err != nil {
		h.ErrorHandler.HandleParameterError(w, "asset_id", err.Error())
		return
	}
	if filter.OpenOnly, err = h.ResponseHelper.QueryBool(r, "open"); err != nil {
		h.ErrorHandler.HandleParameterError(w, "open", err.Error())
		return
	}

	page := h.ResponseHelper.ParsePaginationParams(r)
	result, err := h.Service.List(ctx, filter, page.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve tickets")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(page, result.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreatePaginatedListResponseData("tickets", nonNil(result.Items), meta))
}

// GetTicketHandler returns one ticket
func (h *TicketHandler) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ticket, err := h.Service.Get(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve ticket")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, ticket)
}

// UpdateTicketHandler edits the descriptive fields of a ticket
func (h *TicketHandler) UpdateTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var ticket model.Ticket
	if err := h.ResponseHelper.DecodeJSON(w, r, &ticket); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	updated, err := h.Service.Update(ctx, id, ticket)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update ticket")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Ticket updated successfully", updated)
}

// DeleteTicketHandler removes a ticket
func (h *TicketHandler) DeleteTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete ticket")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Ticket deleted successfully", map[string]string{"id": id.String()})
}

// ChangeStatusHandler moves a ticket through its workflow
func (h *TicketHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := h.ResponseHelper.DecodeJSON(w, r, &req); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	ticket, err := h.Service.ChangeStatus(ctx, id, req.Status, req.Resolution)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "change ticket status")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Ticket status updated", ticket)
}

// AssignTicketHandler hands a ticket to an engineer
func (h *TicketHandler) AssignTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req AssignRequest
	if err := h.ResponseHelper.DecodeJSON(w, r, &req); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	ticket, err := h.Service.Assign(ctx, id, req.AssignedEngineer)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "assign ticket")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Ticket assigned successfully", ticket)
}
