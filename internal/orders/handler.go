package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/platform/httpx"
	"github.com/draftdesk/draftdesk/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if req.Currency != "" {
		if _, err := currency.ParseISO(req.Currency); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Currency", "currency must be an ISO 4217 code")
			return
		}
	}

	draft, err := h.service.CreateDraft(r.Context(), CreateDraftInput{
		TenantID:     req.TenantID,
		Type:         req.Type,
		PartyID:      req.PartyID,
		Currency:     req.Currency,
		RateMode:     req.RateMode,
		DocumentDate: req.DocumentDate,
		CreatedBy:    actorID(r),
	})
	if err != nil {
		h.respondServiceError(w, "create draft", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newDraftResponse(draft))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get draft", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(r.URL.Query().Get("tenant_id"), 10, 64)
	if err != nil || tenantID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "tenant_id is required")
		return
	}

	req := ListDraftsRequest{TenantID: tenantID, Limit: 50}
	if v := r.URL.Query().Get("type"); v != "" {
		req.Type = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := DraftStatus(v)
		req.Status = &status
	}
	if v := r.URL.Query().Get("party_id"); v != "" {
		if partyID, err := strconv.ParseInt(v, 10, 64); err == nil && partyID > 0 {
			req.PartyID = &partyID
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 1 {
			req.Offset = (page - 1) * req.Limit
		}
	}

	drafts, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "list drafts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"drafts":     drafts,
		"pagination": shared.NewPagination(req.Offset/req.Limit+1, req.Limit, total),
	})
}

func (h *Handler) ReplaceLines(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	var req ReplaceLinesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inputs := make([]LineInput, 0, len(req.Lines))
	for _, lr := range req.Lines {
		inputs = append(inputs, lr.toInput())
	}

	draft, err := h.service.ReplaceLines(r.Context(), id, inputs)
	if err != nil {
		h.respondServiceError(w, "replace lines", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	var req UpdateHeaderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	draft, err := h.service.UpdateHeader(r.Context(), id, HeaderInput{
		PartyID:               req.PartyID,
		DocumentDate:          req.DocumentDate,
		HeaderDiscountPercent: req.HeaderDiscountPercent,
		RoundOff:              req.RoundOff,
	})
	if err != nil {
		h.respondServiceError(w, "update header", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	order, err := strconv.Atoi(chi.URLParam(r, "order"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Line", "line order must be an integer")
		return
	}
	draft, err := h.service.RemoveLine(r.Context(), id, order)
	if err != nil {
		h.respondServiceError(w, "remove line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	result, err := h.service.ValidateDraft(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "validate draft", err)
		return
	}
	status := http.StatusOK
	if !result.OK {
		status = http.StatusUnprocessableEntity
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, err := h.service.Reset(r.Context(), id, actorID(r))
	if err != nil {
		h.respondServiceError(w, "reset draft", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, result, err := h.service.Submit(r.Context(), id, actorID(r))
	switch {
	case errors.Is(err, gateway.ErrRejected):
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"draft":   draft,
			"message": rejectionMessage(draft),
		})
		return
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Already Submitted", "this draft has already been submitted")
		return
	case err != nil:
		h.logger.Warn("submit transport failure", "draft_id", id, "error", err)
		httpx.JSON(w, http.StatusAccepted, map[string]any{
			"draft":   draft,
			"message": "backend unreachable, submission queued for retry",
		})
		return
	}
	if !result.OK {
		httpx.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	httpx.JSON(w, http.StatusOK, newDraftResponse(draft))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID(r)); err != nil {
		h.respondServiceError(w, "delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) draftID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "draft id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "draft not found")
	case errors.Is(err, shared.ErrDraftSubmitted):
		httpx.Problem(w, http.StatusConflict, "Draft Submitted", "submitted drafts are immutable")
	case errors.Is(err, shared.ErrMinimumLines):
		httpx.Problem(w, http.StatusBadRequest, "Minimum Lines", err.Error())
	case errors.Is(err, shared.ErrUnknownDocumentType):
		httpx.Problem(w, http.StatusBadRequest, "Unknown Type", err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func rejectionMessage(draft *Draft) string {
	if draft != nil && draft.LastError != nil {
		return *draft.LastError
	}
	return "the document could not be saved"
}

func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id
}
