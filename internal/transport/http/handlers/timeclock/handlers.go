package timeclockhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/timeclock"
	"github.com/Leeseongbin2/smm-panel-v2/internal/platform/metrics"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/api"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/middleware"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/shared"
)

type Handler struct {
	Service  *timeclock.Service
	Metrics  *metrics.Collector
	PageSize int
}

func NewHandler(service *timeclock.Service, collector *metrics.Collector, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = timeclock.DefaultPageSize
	}
	return &Handler{Service: service, Metrics: collector, PageSize: pageSize}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/employees", func(r chi.Router) {
		r.Use(middleware.RequireOwner)
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEmployee)
			r.Delete("/", h.handleDeleteEmployee)
			r.Patch("/memo", h.handleUpdateMemo)
			r.Patch("/wage", h.handleUpdateWage)
			r.Post("/clock-in", h.handleClockIn)
			r.Post("/clock-out", h.handleClockOut)
			r.Get("/logs", h.handleListLogs)
			r.Post("/logs", h.handleAddManualLog)
			r.Get("/balance", h.handleBalance)
			r.Post("/pay", h.handlePay)
		})
	})
}

type createEmployeeRequest struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	HourlyWage float64 `json:"hourlyWage"`
	Memo       string  `json:"memo"`
}

type memoRequest struct {
	Memo string `json:"memo"`
}

type wageRequest struct {
	HourlyWage float64 `json:"hourlyWage"`
}

type manualLogRequest struct {
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	HourlyWage float64 `json:"hourlyWage"`
}

type payRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	employees, err := h.Service.ListEmployees(r.Context(), owner.OwnerID)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"employees": employees}, reqID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("phone", payload.Phone, "is required")
	v.Positive("hourlyWage", payload.HourlyWage, "must be greater than zero")
	if v.Reject(w, reqID) {
		return
	}

	employee, err := h.Service.AddEmployee(r.Context(), owner.OwnerID, payload.Name, payload.Phone, payload.HourlyWage, payload.Memo)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Created(w, employee, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	employee, err := h.Service.GetEmployee(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, employee, reqID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteEmployee(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID")); err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, reqID)
}

func (h *Handler) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload memoRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.UpdateMemo(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"), payload.Memo); err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"updated": true}, reqID)
}

func (h *Handler) handleUpdateWage(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload wageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Positive("hourlyWage", payload.HourlyWage, "must be greater than zero")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Service.UpdateWage(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"), payload.HourlyWage); err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"updated": true}, reqID)
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	if err := h.Service.ClockIn(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID")); err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"status": timeclock.StatusOnDuty}, reqID)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	entry, err := h.Service.ClockOut(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, entry, reqID)
}

// handleListLogs serves the work-log ledger. Without filters it pages newest
// first with an opaque cursor. With from/to/type filters the full ledger is
// filtered server side, matching how the owners browse a single pay period.
func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	query := r.URL.Query()
	kind := strings.ToLower(strings.TrimSpace(query.Get("type")))
	fromRaw := strings.TrimSpace(query.Get("from"))
	toRaw := strings.TrimSpace(query.Get("to"))

	v := shared.NewValidator()
	v.Enum("type", kind, []string{timeclock.FilterAll, timeclock.FilterWork, timeclock.FilterPay}, "must be one of all, work, pay")
	var from, to time.Time
	if fromRaw != "" {
		from, _ = v.Date("from", fromRaw)
	}
	if toRaw != "" {
		to, _ = v.Date("to", toRaw)
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}

	filtered := fromRaw != "" || toRaw != "" || (kind != "" && kind != timeclock.FilterAll)
	if filtered {
		entries, err := h.Service.ListAllLogs(r.Context(), owner.OwnerID, employeeID)
		if err != nil {
			failDomain(w, err, reqID)
			return
		}
		if kind == "" {
			kind = timeclock.FilterAll
		}
		entries = timeclock.FilterLogs(entries, from, to, kind)
		api.Success(w, timeclock.LogPage{Entries: entries}, reqID)
		return
	}

	pageSize := h.PageSize
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	page, err := h.Service.ListLogs(r.Context(), owner.OwnerID, employeeID, pageSize, query.Get("cursor"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, page, reqID)
}

func (h *Handler) handleAddManualLog(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload manualLogRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("date", payload.Date, "is required")
	v.Positive("hours", payload.Hours, "must be greater than zero")
	v.Positive("hourlyWage", payload.HourlyWage, "must be greater than zero")
	var day time.Time
	if strings.TrimSpace(payload.Date) != "" {
		day, _ = v.Date("date", payload.Date)
	}
	if v.Reject(w, reqID) {
		return
	}

	entry, err := h.Service.AddManualLog(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"), day, payload.Hours, payload.HourlyWage)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Created(w, entry, reqID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	balance, err := h.Service.UnpaidBalance(r.Context(), owner.OwnerID, employeeID)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"employeeId": employeeID, "unpaidTotal": balance}, reqID)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload payRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	result, err := h.Service.Pay(r.Context(), owner.OwnerID, chi.URLParam(r, "employeeID"), payload.Amount)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordSettlement()
	}
	api.Success(w, result, reqID)
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, timeclock.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, timeclock.ErrAlreadyOnDuty):
		api.Fail(w, http.StatusConflict, "already_on_duty", "employee is already clocked in", requestID)
	case errors.Is(err, timeclock.ErrNotOnDuty):
		api.Fail(w, http.StatusConflict, "not_on_duty", "employee is not clocked in", requestID)
	case errors.Is(err, timeclock.ErrConflict):
		api.Fail(w, http.StatusConflict, "settlement_conflict", "a concurrent settlement is in progress, retry shortly", requestID)
	case errors.Is(err, timeclock.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", "payment amount must be greater than zero", requestID)
	case errors.Is(err, timeclock.ErrInvalidManualLog):
		api.Fail(w, http.StatusBadRequest, "invalid_log", "manual log requires positive hours and wage", requestID)
	case errors.Is(err, timeclock.ErrInvalidEmployee):
		api.Fail(w, http.StatusBadRequest, "invalid_employee", err.Error(), requestID)
	case errors.Is(err, timeclock.ErrInvalidCursor):
		api.Fail(w, http.StatusBadRequest, "invalid_cursor", "log cursor is malformed", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
