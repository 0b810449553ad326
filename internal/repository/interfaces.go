package repository

import (
	"context"

	"github.com/abrezinsky/hypervision/internal/models"
)

// OptionRepository defines option catalogue operations
type OptionRepository interface {
	SyncOptions(ctx context.Context, options []models.Option) error
	ListOptions(ctx context.Context) ([]models.Option, error)
}

// SelectionRepository defines the selection journal
type SelectionRepository interface {
	SaveSelection(ctx context.Context, sel models.Selection) error
	ListSelections(ctx context.Context) ([]models.Selection, error)
	CountSelections(ctx context.Context) (int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	OptionRepository
	SelectionRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
