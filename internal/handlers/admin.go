package handlers

import (
	"net/http"

	"github.com/abrezinsky/hypervision/internal/models"
	"github.com/abrezinsky/hypervision/internal/services"
)

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string
	Summary   models.Summary
}

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     h.Title + " Admin",
		PageTitle: "Selection Dashboard",
		ActiveNav: "dashboard",
		Summary:   h.Selection.Summary(r.Context()),
	}
	h.templates.AdminDashboard.ExecuteTemplate(w, "admin", data)
}

// ==================== Selections ====================

func (h *Handlers) handleGetSelections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondOK(w, SelectionsResponse{
		Selections: h.Selection.Selections(ctx),
		Summary:    h.Selection.Summary(ctx),
	})
}

// ==================== QR Code ====================

func (h *Handlers) handleGetPortalQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Settings.PortalQRImage(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	baseURL, err := h.Settings.GetBaseURL(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	portalURL, _ := h.Settings.PortalURL(ctx)

	respondOK(w, SettingsResponse{
		BaseURL:   baseURL,
		PortalURL: portalURL,
	})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings := services.Settings{BaseURL: req.BaseURL}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}
