package reportshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/reports"
	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/timeclock"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/api"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports/employees/{employeeID}", func(r chi.Router) {
		r.Use(middleware.RequireOwner)
		r.Get("/statement.pdf", h.handleStatementPDF)
		r.Get("/ledger.csv", h.handleLedgerCSV)
		r.Get("/ledger.xlsx", h.handleLedgerXLSX)
	})
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="wage-statement.pdf"`)
	if err := h.Service.WriteStatementPDF(r.Context(), w, owner.StoreName, owner.OwnerID, employeeID); err != nil {
		failExport(w, err, reqID, "statement export failed")
	}
}

func (h *Handler) handleLedgerCSV(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="wage-ledger.csv"`)
	if err := h.Service.WriteLedgerCSV(r.Context(), w, owner.OwnerID, employeeID); err != nil {
		failExport(w, err, reqID, "ledger csv export failed")
	}
}

func (h *Handler) handleLedgerXLSX(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.GetOwner(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="wage-ledger.xlsx"`)
	if err := h.Service.WriteLedgerXLSX(r.Context(), w, owner.OwnerID, employeeID); err != nil {
		failExport(w, err, reqID, "ledger xlsx export failed")
	}
}

// failExport only writes an error envelope when nothing was streamed yet.
// Once rows have gone out we can only log the failure.
func failExport(w http.ResponseWriter, err error, requestID, msg string) {
	if errors.Is(err, timeclock.ErrEmployeeNotFound) {
		w.Header().Del("Content-Disposition")
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	slog.Error(msg, "err", err, "requestId", requestID)
}
