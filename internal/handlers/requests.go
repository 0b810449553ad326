package handlers

// SessionRequest starts a portal session
type SessionRequest struct {
	Name string `json:"name"`
}

// SelectRequest picks an option for the session's participant
type SelectRequest struct {
	OptionID string `json:"option_id"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL string `json:"base_url"`
}
