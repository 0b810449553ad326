package services

import (
	"context"

	"github.com/abrezinsky/hypervision/internal/models"
)

// SelectionServicer defines the interface for portal sessions and selections
type SelectionServicer interface {
	BeginSession(ctx context.Context, name string) (*Session, error)
	EndSession(ctx context.Context, token string)
	Participant(ctx context.Context, token string) (string, error)
	Portal(ctx context.Context, token string) *PortalView
	SelectOption(ctx context.Context, token string, optionID models.OptionID) (*models.SelectionResult, error)
	OptionStatus(ctx context.Context, optionID models.OptionID) (*models.OptionStatus, error)
	Statuses(ctx context.Context) []models.OptionStatus
	Summary(ctx context.Context) models.Summary
	AllOptionsFull(ctx context.Context) bool
	Selections(ctx context.Context) []models.Selection
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	PortalURL(ctx context.Context) (string, error)
	PortalQRImage(ctx context.Context) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ SelectionServicer = (*SelectionService)(nil)
	_ SettingsServicer  = (*SettingsService)(nil)
)
