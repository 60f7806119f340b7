package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Eissaali11/nuzum/internal/service"
)

// ReportHandler serves accident report downloads.
type ReportHandler struct {
	accidents service.AccidentService
	logger    *slog.Logger
}

// NewReportHandler creates the accident report handler.
func NewReportHandler(accidents service.AccidentService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{accidents: accidents, logger: logger}
}

// AccidentReport handles GET /api/v1/accidents/{id}/report, streaming the
// composed PDF as a download.
func (h *ReportHandler) AccidentReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "invalid id")
		return
	}

	pdf, filename, err := h.accidents.GenerateReport(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
