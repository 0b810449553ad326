package services

import (
	"context"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/hypervision/internal/logger"
	"github.com/abrezinsky/hypervision/internal/repository"
)

const settingBaseURL = "base_url"

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ErrInvalidBaseURL
	}
	if err := s.repo.SetSetting(ctx, settingBaseURL, url); err != nil {
		return err
	}
	s.log.Info("Base URL updated", "base_url", url)
	return nil
}

// AllSettings returns the editable settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		settingBaseURL: baseURL,
	}, nil
}

// Settings represents application settings for update operations
type Settings struct {
	BaseURL string
}

// UpdateSettings updates the provided settings
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != "" {
		if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// PortalURL returns the public portal address participants should open
func (s *SettingsService) PortalURL(ctx context.Context) (string, error) {
	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return "", ErrBaseURLNotSet
	}
	return baseURL + "/", nil
}

// PortalQRImage renders the portal URL as a PNG QR code
func (s *SettingsService) PortalQRImage(ctx context.Context) ([]byte, error) {
	portalURL, err := s.PortalURL(ctx)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(portalURL, qrcode.Medium, 256)
}
