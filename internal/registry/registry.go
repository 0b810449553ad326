// Package registry tracks which participant picked which problem statement.
//
// A Registry enforces that every participant selects at most once and that no
// option is selected more often than its capacity. Tiers, percentages and
// summaries are computed from the raw counts on every read.
package registry

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/abrezinsky/hypervision/internal/models"
)

// Config defines the fixed option set and thresholds
type Config struct {
	Options       []models.Option
	Capacity      int
	FewSlotsAt    int
	MinNameLength int
}

// DefaultConfig returns the reference configuration: three problem
// statements, 20 slots each, "few slots" from 15 selections on.
func DefaultConfig() Config {
	return Config{
		Options: []models.Option{
			{ID: "optionA", Name: "Problem Statement A"},
			{ID: "optionB", Name: "Problem Statement B"},
			{ID: "optionC", Name: "Problem Statement C"},
		},
		Capacity:      20,
		FewSlotsAt:    15,
		MinNameLength: 2,
	}
}

// Validate checks the configuration for internal consistency
func (c Config) Validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("at least one option is required")
	}
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}
	if c.FewSlotsAt < 0 || c.FewSlotsAt > c.Capacity {
		return fmt.Errorf("few_slots_at must be between 0 and %d, got %d", c.Capacity, c.FewSlotsAt)
	}
	if c.MinNameLength < 1 {
		return fmt.Errorf("min_name_length must be at least 1, got %d", c.MinNameLength)
	}
	seen := make(map[models.OptionID]bool, len(c.Options))
	for _, opt := range c.Options {
		if strings.TrimSpace(string(opt.ID)) == "" {
			return fmt.Errorf("option id must not be empty")
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}

// CommitFunc is invoked inside the critical section once a selection has
// passed every guard. Returning an error aborts the selection.
type CommitFunc func(sel models.Selection) error

// Registry owns option counts and participant selections
type Registry struct {
	mu sync.RWMutex

	cfg        Config
	index      map[models.OptionID]int
	counts     []int
	selections map[string]models.OptionID
	order      []models.Selection
	current    string
	now        func() time.Time
}

// New creates an empty registry for the given configuration
func New(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := make([]models.Option, len(cfg.Options))
	copy(options, cfg.Options)
	cfg.Options = options

	index := make(map[models.OptionID]int, len(options))
	for i, opt := range options {
		index[opt.ID] = i
	}

	return &Registry{
		cfg:        cfg,
		index:      index,
		counts:     make([]int, len(options)),
		selections: make(map[string]models.OptionID),
		now:        time.Now,
	}, nil
}

// SetClock replaces the time source used to stamp selections (for testing)
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Config returns the registry configuration
func (r *Registry) Config() Config {
	cfg := r.cfg
	cfg.Options = r.Options()
	return cfg
}

// Options returns the configured options in display order
func (r *Registry) Options() []models.Option {
	out := make([]models.Option, len(r.cfg.Options))
	copy(out, r.cfg.Options)
	return out
}

// NormalizeName trims the name and validates its length
func (r *Registry) NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Reason: EmptyName, MinLength: r.cfg.MinNameLength}
	}
	if utf8.RuneCountInString(name) < r.cfg.MinNameLength {
		return "", &ValidationError{Reason: TooShort, MinLength: r.cfg.MinNameLength}
	}
	return name, nil
}

// BeginSession makes name the current participant. No selection is recorded;
// the result reports whether the participant already chose an option.
func (r *Registry) BeginSession(name string) (models.SessionResult, error) {
	name, err := r.NormalizeName(name)
	if err != nil {
		return models.SessionResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = name
	return r.sessionResultLocked(name), nil
}

// Session returns the session view for an already-validated participant
// without changing the current participant.
func (r *Registry) Session(participant string) models.SessionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionResultLocked(participant)
}

func (r *Registry) sessionResultLocked(participant string) models.SessionResult {
	result := models.SessionResult{Participant: participant}
	if optID, ok := r.selections[participant]; ok {
		result.AlreadySelected = true
		result.OptionID = optID
		result.OptionName = r.cfg.Options[r.index[optID]].Name
	}
	return result
}

// CurrentParticipant returns the participant of the active session
func (r *Registry) CurrentParticipant() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != ""
}

// SelectOption records a selection for the current participant
func (r *Registry) SelectOption(optionID models.OptionID) (models.SelectionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return models.SelectionResult{}, ErrNoSession
	}
	return r.selectLocked(r.current, optionID, nil)
}

// SelectOptionFor records a selection for participant. Guards, commit and
// mutation happen under one lock so that concurrent callers cannot both pass
// the capacity or already-selected check.
func (r *Registry) SelectOptionFor(participant string, optionID models.OptionID, commit CommitFunc) (models.SelectionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if participant == "" {
		return models.SelectionResult{}, ErrNoSession
	}
	return r.selectLocked(participant, optionID, commit)
}

func (r *Registry) selectLocked(participant string, optionID models.OptionID, commit CommitFunc) (models.SelectionResult, error) {
	i, ok := r.index[optionID]
	if !ok {
		return models.SelectionResult{}, ErrUnknownOption
	}
	if _, exists := r.selections[participant]; exists {
		return models.SelectionResult{}, ErrAlreadySelected
	}
	if r.counts[i] >= r.cfg.Capacity {
		return models.SelectionResult{}, ErrOptionFull
	}

	sel := models.Selection{
		Participant: participant,
		OptionID:    optionID,
		SelectedAt:  r.now().UTC(),
	}
	if commit != nil {
		if err := commit(sel); err != nil {
			return models.SelectionResult{}, err
		}
	}

	r.counts[i]++
	r.selections[participant] = optionID
	r.order = append(r.order, sel)

	return models.SelectionResult{
		Participant: participant,
		OptionID:    optionID,
		OptionName:  r.cfg.Options[i].Name,
		Count:       r.counts[i],
	}, nil
}

// Lookup returns the option recorded for participant, if any
func (r *Registry) Lookup(participant string) (models.OptionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	optID, ok := r.selections[participant]
	return optID, ok
}

// OptionStatus returns the count, capacity and derived tier of one option
func (r *Registry) OptionStatus(optionID models.OptionID) (models.OptionStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[optionID]
	if !ok {
		return models.OptionStatus{}, ErrUnknownOption
	}
	return r.statusLocked(i), nil
}

// Statuses returns the status of every option in display order
func (r *Registry) Statuses() []models.OptionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.OptionStatus, len(r.cfg.Options))
	for i := range r.cfg.Options {
		out[i] = r.statusLocked(i)
	}
	return out
}

func (r *Registry) statusLocked(i int) models.OptionStatus {
	opt := r.cfg.Options[i]
	count := r.counts[i]
	return models.OptionStatus{
		ID:         opt.ID,
		Name:       opt.Name,
		Count:      count,
		Capacity:   r.cfg.Capacity,
		Percentage: Percentage(count, r.cfg.Capacity),
		Tier:       TierFor(count, r.cfg.Capacity, r.cfg.FewSlotsAt),
	}
}

// Summary returns aggregate statistics across all options
func (r *Registry) Summary() models.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := models.Summary{
		DistinctParticipants: len(r.selections),
		PerOption:            make([]models.OptionStatus, len(r.cfg.Options)),
		AllFull:              r.allFullLocked(),
	}
	for i := range r.cfg.Options {
		s.TotalSelections += r.counts[i]
		s.PerOption[i] = r.statusLocked(i)
	}
	s.AvailableSlots = len(r.cfg.Options)*r.cfg.Capacity - s.TotalSelections
	return s
}

// AllOptionsFull reports whether every option has reached capacity
func (r *Registry) AllOptionsFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allFullLocked()
}

func (r *Registry) allFullLocked() bool {
	for _, c := range r.counts {
		if c < r.cfg.Capacity {
			return false
		}
	}
	return true
}

// Selections returns every recorded selection in the order it was made
func (r *Registry) Selections() []models.Selection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Selection, len(r.order))
	copy(out, r.order)
	return out
}

// Load replaces the registry contents with previously recorded history.
// Live guards are skipped, but history that would break capacity or
// one-selection-per-participant is rejected and nothing is changed.
func (r *Registry) Load(history []models.Selection) error {
	counts := make([]int, len(r.cfg.Options))
	selections := make(map[string]models.OptionID, len(history))
	order := make([]models.Selection, 0, len(history))

	for n, sel := range history {
		i, ok := r.index[sel.OptionID]
		if !ok {
			return fmt.Errorf("selection %d (%s): %w %q", n, sel.Participant, ErrUnknownOption, sel.OptionID)
		}
		if sel.Participant == "" {
			return fmt.Errorf("selection %d: empty participant", n)
		}
		if _, dup := selections[sel.Participant]; dup {
			return fmt.Errorf("selection %d (%s): %w", n, sel.Participant, ErrAlreadySelected)
		}
		counts[i]++
		if counts[i] > r.cfg.Capacity {
			return fmt.Errorf("selection %d (%s): %w %q", n, sel.Participant, ErrOptionFull, sel.OptionID)
		}
		selections[sel.Participant] = sel.OptionID
		order = append(order, sel)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = counts
	r.selections = selections
	r.order = order
	return nil
}

// TierFor derives the display tier from a count
func TierFor(count, capacity, fewSlotsAt int) models.Tier {
	switch {
	case count >= capacity:
		return models.TierFull
	case count >= fewSlotsAt:
		return models.TierFewSlots
	default:
		return models.TierAvailable
	}
}

// Percentage returns round(100*count/capacity)
func Percentage(count, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(capacity)))
}
