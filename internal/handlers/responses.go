package handlers

import "github.com/abrezinsky/hypervision/internal/models"

// SelectResponse is returned after a successful selection
type SelectResponse struct {
	models.SelectionResult
	Summary models.Summary `json:"summary"`
}

// StatusResponse reports whether registration is still open
type StatusResponse struct {
	AllFull bool `json:"all_full"`
}

// SelectionsResponse is the admin view of every selection
type SelectionsResponse struct {
	Selections []models.Selection `json:"selections"`
	Summary    models.Summary     `json:"summary"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL   string `json:"base_url"`
	PortalURL string `json:"portal_url,omitempty"`
}
