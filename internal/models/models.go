package models

import "time"

// OptionID identifies one of the configured problem statements
type OptionID string

// Option is a selectable problem statement as configured at startup
type Option struct {
	ID   OptionID `json:"id"`
	Name string   `json:"name"`
}

// Tier classifies how full an option is. It is always derived from counts.
type Tier string

const (
	TierAvailable Tier = "available"
	TierFewSlots  Tier = "few_slots"
	TierFull      Tier = "full"
)

// Selection is a participant's recorded choice
type Selection struct {
	Participant string    `json:"participant"`
	OptionID    OptionID  `json:"option_id"`
	SelectedAt  time.Time `json:"selected_at"`
}

// OptionStatus is the derived view of a single option
type OptionStatus struct {
	ID         OptionID `json:"id"`
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Capacity   int      `json:"capacity"`
	Percentage int      `json:"percentage"`
	Tier       Tier     `json:"tier"`
}

// Summary is the aggregate statistics shown on the portal
type Summary struct {
	TotalSelections      int            `json:"total_selections"`
	AvailableSlots       int            `json:"available_slots"`
	DistinctParticipants int            `json:"distinct_participants"`
	AllFull              bool           `json:"all_full"`
	PerOption            []OptionStatus `json:"per_option"`
}

// SessionResult is returned when a participant enters the portal
type SessionResult struct {
	Participant     string   `json:"participant"`
	AlreadySelected bool     `json:"already_selected"`
	OptionID        OptionID `json:"option_id,omitempty"`
	OptionName      string   `json:"option_name,omitempty"`
}

// SelectionResult is returned after a successful selection
type SelectionResult struct {
	Participant string   `json:"participant"`
	OptionID    OptionID `json:"option_id"`
	OptionName  string   `json:"option_name"`
	Count       int      `json:"count"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
