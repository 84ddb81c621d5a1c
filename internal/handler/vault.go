package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/workshop/internal/model"
	"github.com/sakif/workshop/internal/service"
)

// VaultHandler serves /api/vault.
type VaultHandler struct {
	svc    *service.WorkshopService
	logger *slog.Logger
}

func NewVaultHandler(svc *service.WorkshopService, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{svc: svc, logger: logger}
}

func (h *VaultHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

func (h *VaultHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListVault(q))
}

func (h *VaultHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetVaultEntry(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *VaultHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.VaultInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid vault JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	entry, err := h.svc.CreateVaultEntry(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *VaultHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.VaultPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.svc.UpdateVaultEntry(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *VaultHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVaultEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
