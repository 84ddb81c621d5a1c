package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/workshop/internal/apperror"
	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/service"
)

// ToolHandler serves /api/tools.
type ToolHandler struct {
	svc    *service.WorkshopService
	logger *slog.Logger
}

func NewToolHandler(svc *service.WorkshopService, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{svc: svc, logger: logger}
}

// Routes mounts the tool endpoints on r.
func (h *ToolHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Patch("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
		r.Post("/duplicate", h.HandleDuplicate)
		r.Get("/card", h.HandleCard)
	})
}

// HandleList handles GET /api/tools?q=&tag=&status=
func (h *ToolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListTools(q))
}

func (h *ToolHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tool, err := h.svc.GetTool(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ToolInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid tool JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	tool, err := h.svc.CreateTool(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

func (h *ToolHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.ToolPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	tool, err := h.svc.UpdateTool(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// HandleDelete answers 204 whether or not the tool existed.
func (h *ToolHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTool(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDuplicate answers 201 with the copy, or 204 when the source is gone.
func (h *ToolHandler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	tool, ok, err := h.svc.DuplicateTool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

// HandleCard returns the tool's clipboard text.
func (h *ToolHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.ToolCard(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

func parseQuery(r *http.Request) (model.Query, error) {
	v := r.URL.Query()
	q := model.Query{
		Text:   strings.TrimSpace(v.Get("q")),
		Tag:    strings.TrimSpace(v.Get("tag")),
		Status: model.Status(strings.TrimSpace(v.Get("status"))),
	}
	if q.Status != "" && !q.Status.Valid() {
		return model.Query{}, apperror.ValidationFailed("status", "status must be draft or ready")
	}
	return q, nil
}
