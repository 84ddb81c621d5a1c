package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/service"
	"github.com/sakif/workshop/internal/store"
)

// ThemeHandler serves /api/themes.
type ThemeHandler struct {
	svc    *service.WorkshopService
	logger *slog.Logger
}

func NewThemeHandler(svc *service.WorkshopService, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{svc: svc, logger: logger}
}

func (h *ThemeHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Patch("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
		r.Get("/tools", h.HandleTools)
		r.Post("/sequence", h.HandleSequence)
		r.Get("/prompt", h.HandlePrompt)
		r.Get("/card", h.HandleCard)
	})
}

func (h *ThemeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListThemes(q))
}

func (h *ThemeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	theme, err := h.svc.GetTheme(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

// HandleTools returns the resolved sequence. Dangling ids appear as null so
// positions line up with the sequence.
func (h *ThemeHandler) HandleTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.svc.ThemeTools(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

func (h *ThemeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ThemeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid theme JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	theme, err := h.svc.CreateTheme(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

func (h *ThemeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.ThemePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	theme, err := h.svc.UpdateTheme(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (h *ThemeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTheme(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSequence applies one sequence operation, e.g.
//
//	{"kind":"moveTo","index":0,"to":2}
//	{"kind":"insertAtEnd","toolId":"..."}
func (h *ThemeHandler) HandleSequence(w http.ResponseWriter, r *http.Request) {
	var op store.SequenceOp
	if err := decodeJSON(w, r, &op); err != nil {
		writeError(w, err)
		return
	}

	theme, err := h.svc.ReorderSequence(r.Context(), chi.URLParam(r, "id"), op)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

// HandlePrompt renders GET /api/themes/{id}/prompt?template=name as text.
func (h *ThemeHandler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Prompt(chi.URLParam(r, "id"), r.URL.Query().Get("template"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

func (h *ThemeHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.ThemeCard(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, text)
}
