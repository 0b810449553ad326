package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/hypervision/internal/models"
	"github.com/abrezinsky/hypervision/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SaveSelectionError = errors.New("disk full")
//	svc := services.NewSelectionService(log, reg, mockRepo)
//	_, err := svc.SelectOption(ctx, token, "optionA")
//	// err now wraps the injected error and the registry is unchanged
type Repository struct {
	repository.FullRepository

	mu sync.Mutex

	// ===== Option Errors =====
	SyncOptionsError error
	ListOptionsError error

	// ===== Selection Errors =====
	SaveSelectionError   error
	ListSelectionsError  error
	CountSelectionsError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// SaveSelectionCalls counts SaveSelection invocations
	SaveSelectionCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) SyncOptions(ctx context.Context, options []models.Option) error {
	if m.SyncOptionsError != nil {
		return m.SyncOptionsError
	}
	return m.FullRepository.SyncOptions(ctx, options)
}

func (m *Repository) ListOptions(ctx context.Context) ([]models.Option, error) {
	if m.ListOptionsError != nil {
		return nil, m.ListOptionsError
	}
	return m.FullRepository.ListOptions(ctx)
}

func (m *Repository) SaveSelection(ctx context.Context, sel models.Selection) error {
	m.mu.Lock()
	m.SaveSelectionCalls++
	m.mu.Unlock()
	if m.SaveSelectionError != nil {
		return m.SaveSelectionError
	}
	return m.FullRepository.SaveSelection(ctx, sel)
}

func (m *Repository) ListSelections(ctx context.Context) ([]models.Selection, error) {
	if m.ListSelectionsError != nil {
		return nil, m.ListSelectionsError
	}
	return m.FullRepository.ListSelections(ctx)
}

func (m *Repository) CountSelections(ctx context.Context) (int, error) {
	if m.CountSelectionsError != nil {
		return 0, m.CountSelectionsError
	}
	return m.FullRepository.CountSelections(ctx)
}

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}
