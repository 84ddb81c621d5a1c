package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/merge"
	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/service"
)

// maxBackupBytes caps uploaded backup files.
const maxBackupBytes = 32 << 20

// WorkshopHandler serves the whole-workshop endpoints: UI state, backup and
// reset.
type WorkshopHandler struct {
	svc    *service.WorkshopService
	logger *slog.Logger
}

func NewWorkshopHandler(svc *service.WorkshopService, logger *slog.Logger) *WorkshopHandler {
	return &WorkshopHandler{svc: svc, logger: logger}
}

func (h *WorkshopHandler) HandleGetUI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.UI())
}

// HandlePutUI merges a flat JSON object over the current UI state and
// returns the result.
func (h *WorkshopHandler) HandlePutUI(w http.ResponseWriter, r *http.Request) {
	var values model.UIState
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, err)
		return
	}

	ui, err := h.svc.SetUI(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ui)
}

// HandleExport streams the backup as a file download.
func (h *WorkshopHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.svc.Export()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write backup", slog.String("error", err.Error()))
	}
}

// ImportResponse reports what an import changed.
type ImportResponse struct {
	Mode merge.Mode `json:"mode"`
	merge.Result
}

// HandleImport handles POST /api/backup?mode=merge|overwrite with the raw
// backup file as the body.
func (h *WorkshopHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := merge.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("mode", err.Error()))
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, apperror.InvalidBackup("could not read backup body", err))
		return
	}

	res, err := h.svc.Import(r.Context(), raw, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Mode: mode, Result: res})
}

// HandleReset clears the workshop. Callers confirm before sending it.
func (h *WorkshopHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
