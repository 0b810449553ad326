package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/metrics"
	"github.com/abrezinsky/hypervision/internal/models"
	"github.com/abrezinsky/hypervision/internal/registry"
	"github.com/abrezinsky/hypervision/internal/repository"
)

// SelectionServiceRepository defines the repository methods needed by SelectionService
type SelectionServiceRepository interface {
	repository.OptionRepository
	repository.SelectionRepository
}

// Broadcaster defines the interface for pushing live updates to clients
type Broadcaster interface {
	BroadcastSummary(summary models.Summary)
	BroadcastSelection(result models.SelectionResult)
	BroadcastRegistrationClosed(summary models.Summary)
}

// SelectionService handles participant sessions and selections
type SelectionService struct {
	log         logger.Logger
	reg         *registry.Registry
	repo        SelectionServiceRepository
	sessions    *SessionStore
	broadcaster Broadcaster

	// publishMu orders gauge updates and broadcasts so the last one out
	// always reflects the latest registry state.
	publishMu sync.Mutex
	closed    bool
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(log logger.Logger, reg *registry.Registry, repo SelectionServiceRepository) *SelectionService {
	return &SelectionService{
		log:      log,
		reg:      reg,
		repo:     repo,
		sessions: NewSessionStore(),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SelectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Session is a started portal session
type Session struct {
	Token string `json:"-"`
	models.SessionResult
}

// PortalView is everything the portal page needs for one session
type PortalView struct {
	Session *models.SessionResult `json:"session,omitempty"`
	Summary models.Summary        `json:"summary"`
	Closed  bool                  `json:"closed"`
}

// Restore syncs configured options into the journal and replays recorded
// selections into the registry.
func (s *SelectionService) Restore(ctx context.Context) error {
	if err := s.repo.SyncOptions(ctx, s.reg.Options()); err != nil {
		return fmt.Errorf("sync options: %w", err)
	}

	history, err := s.repo.ListSelections(ctx)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if err := s.reg.Load(history); err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}

	s.publish(nil)
	if len(history) > 0 {
		s.log.Info("Restored selections from journal", "count", len(history))
	}
	return nil
}

// BeginSession validates name and issues a session token for it
func (s *SelectionService) BeginSession(ctx context.Context, name string) (*Session, error) {
	result, err := s.reg.BeginSession(name)
	if err != nil {
		metrics.RecordSession(metrics.ResultError)
		return nil, selectionError(err, "")
	}

	token := s.sessions.Create(result.Participant)
	metrics.RecordSession(metrics.ResultOK)
	s.log.Debug("Session started", "participant", result.Participant, "already_selected", result.AlreadySelected)

	return &Session{Token: token, SessionResult: result}, nil
}

// EndSession forgets a session token
func (s *SelectionService) EndSession(ctx context.Context, token string) {
	s.sessions.Delete(token)
}

// Participant resolves a session token
func (s *SelectionService) Participant(ctx context.Context, token string) (string, error) {
	participant, ok := s.sessions.Lookup(token)
	if !ok {
		return "", selectionError(registry.ErrNoSession, "")
	}
	return participant, nil
}

// Portal returns the view for a session. An unknown token yields a view
// without a session rather than an error.
func (s *SelectionService) Portal(ctx context.Context, token string) *PortalView {
	summary := s.reg.Summary()
	view := &PortalView{Summary: summary, Closed: summary.AllFull}

	if participant, ok := s.sessions.Lookup(token); ok {
		result := s.reg.Session(participant)
		view.Session = &result
	}
	return view
}

// SelectOption records a selection for the session's participant. The
// journal write happens under the registry lock so the two never disagree.
func (s *SelectionService) SelectOption(ctx context.Context, token string, optionID models.OptionID) (*models.SelectionResult, error) {
	label := s.optionLabel(optionID)
	participant, ok := s.sessions.Lookup(token)
	if !ok {
		metrics.RecordSelectionAttempt(label, metrics.ResultNoSession)
		return nil, selectionError(registry.ErrNoSession, string(optionID))
	}

	result, err := s.reg.SelectOptionFor(participant, optionID, func(sel models.Selection) error {
		return s.repo.SaveSelection(ctx, sel)
	})
	if err != nil {
		metrics.RecordSelectionAttempt(label, attemptResult(err))
		s.log.Debug("Selection rejected", "participant", participant, "option", optionID, "error", err)
		return nil, selectionError(err, string(optionID))
	}

	metrics.RecordSelectionAttempt(label, metrics.ResultOK)
	s.log.Info("Selection recorded", "participant", participant, "option", optionID, "count", result.Count)

	s.publish(&result)
	return &result, nil
}

// optionLabel keeps metric labels to configured option ids
func (s *SelectionService) optionLabel(optionID models.OptionID) string {
	if _, err := s.reg.OptionStatus(optionID); err != nil {
		return metrics.OptionUnknown
	}
	return string(optionID)
}

// publish pushes a fresh summary to the gauges and, when result is set,
// broadcasts the selection. Registration closing is announced once.
func (s *SelectionService) publish(result *models.SelectionResult) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	summary := s.reg.Summary()
	for _, st := range summary.PerOption {
		metrics.SetOptionSelections(string(st.ID), st.Count)
	}
	if summary.AllFull && result == nil {
		s.closed = true
	}

	if result == nil || s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastSelection(*result)
	s.broadcaster.BroadcastSummary(summary)
	if summary.AllFull && !s.closed {
		s.closed = true
		s.log.Info("All problem statements are full, registration closed")
		s.broadcaster.BroadcastRegistrationClosed(summary)
	}
}

func attemptResult(err error) string {
	switch {
	case stderrors.Is(err, registry.ErrOptionFull):
		return metrics.ResultFull
	case stderrors.Is(err, registry.ErrAlreadySelected), stderrors.Is(err, repository.ErrDuplicateSelection):
		return metrics.ResultAlreadySelected
	case stderrors.Is(err, registry.ErrUnknownOption):
		return metrics.ResultUnknownOption
	default:
		return metrics.ResultError
	}
}

// OptionStatus returns the status of one option
func (s *SelectionService) OptionStatus(ctx context.Context, optionID models.OptionID) (*models.OptionStatus, error) {
	status, err := s.reg.OptionStatus(optionID)
	if err != nil {
		return nil, selectionError(err, string(optionID))
	}
	return &status, nil
}

// Statuses returns the status of every option in display order
func (s *SelectionService) Statuses(ctx context.Context) []models.OptionStatus {
	return s.reg.Statuses()
}

// Summary returns aggregate statistics
func (s *SelectionService) Summary(ctx context.Context) models.Summary {
	return s.reg.Summary()
}

// AllOptionsFull reports whether registration is closed
func (s *SelectionService) AllOptionsFull(ctx context.Context) bool {
	return s.reg.AllOptionsFull()
}

// Selections returns every selection in recording order
func (s *SelectionService) Selections(ctx context.Context) []models.Selection {
	return s.reg.Selections()
}
