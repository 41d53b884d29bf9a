package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/model"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/pkg/logger"
)

// SettingsPatch carries only the fields the admin submitted
type SettingsPatch struct {
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	Instagram     *string `json:"instagram"`
	Facebook      *string `json:"facebook"`
	WhatsApp      *string `json:"whatsapp"`
	AboutUs       *string `json:"about_us"`
	Mission       *string `json:"mission"`
	Vision        *string `json:"vision"`
	BusinessHours *string `json:"business_hours"`
	ShippingInfo  *string `json:"shipping_info"`
	ReturnPolicy  *string `json:"return_policy"`
}

func (p SettingsPatch) apply(s *model.Settings) {
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{p.Phone, &s.Phone},
		{p.Email, &s.Email},
		{p.Address, &s.Address},
		{p.Instagram, &s.Instagram},
		{p.Facebook, &s.Facebook},
		{p.WhatsApp, &s.WhatsApp},
		{p.AboutUs, &s.AboutUs},
		{p.Mission, &s.Mission},
		{p.Vision, &s.Vision},
		{p.BusinessHours, &s.BusinessHours},
		{p.ShippingInfo, &s.ShippingInfo},
		{p.ReturnPolicy, &s.ReturnPolicy},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (*model.Settings, error)
	ResetContent(ctx context.Context) (*model.Settings, error)
	// WhatsAppNumber is the checkout handoff destination
	WhatsAppNumber(ctx context.Context) string
}

type settingsService struct {
	prober         Prober
	settingsRepo   repository.SettingsRepository
	probeTimeout   time.Duration
	fallbackNumber string
}

func NewSettingsService(prober Prober, settingsRepo repository.SettingsRepository, probeTimeout time.Duration, fallbackNumber string) SettingsService {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &settingsService{
		prober:         prober,
		settingsRepo:   settingsRepo,
		probeTimeout:   probeTimeout,
		fallbackNumber: fallbackNumber,
	}
}

func (s *settingsService) reachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	if err := s.prober.Ping(probeCtx); err != nil {
		logger.Warn("Primary store unreachable for settings", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// load returns the stored row, creating it with defaults when absent and
// backfilling empty content fields
func (s *settingsService) load(ctx context.Context) (*model.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, repository.ErrSettingsNotFound) {
		defaults := model.DefaultSettings()
		if err := s.settingsRepo.Save(ctx, &defaults); err != nil {
			return nil, err
		}
		logger.Info("Settings created with defaults")
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}

	if settings.BackfillContent() {
		if err := s.settingsRepo.Save(ctx, settings); err != nil {
			logger.Warn("Failed to persist backfilled settings", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("Settings content backfilled with defaults")
		}
	}
	return settings, nil
}

// GetSettings never fails because the primary store is down; defaults are
// served instead.
func (s *settingsService) GetSettings(ctx context.Context) (*model.Settings, error) {
	if !s.reachable(ctx) {
		defaults := model.DefaultSettings()
		return &defaults, nil
	}

	settings, err := s.load(ctx)
	if err != nil {
		logger.Error("Failed to load settings", err)
		return nil, ErrStoreUnavailable
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, patch SettingsPatch) (*model.Settings, error) {
	if !s.reachable(ctx) {
		return nil, ErrStoreUnavailable
	}

	settings, err := s.load(ctx)
	if err != nil {
		logger.Error("Failed to load settings for update", err)
		return nil, ErrStoreUnavailable
	}

	patch.apply(settings)
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, ErrStoreUnavailable
	}

	logger.Info("Settings updated")
	return settings, nil
}

func (s *settingsService) ResetContent(ctx context.Context) (*model.Settings, error) {
	if !s.reachable(ctx) {
		return nil, ErrStoreUnavailable
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, ErrStoreUnavailable
	}

	settings.ResetContent()
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, ErrStoreUnavailable
	}

	logger.Info("Settings content reset to defaults")
	return settings, nil
}

func (s *settingsService) WhatsAppNumber(ctx context.Context) string {
	settings, err := s.GetSettings(ctx)
	if err == nil && strings.TrimSpace(settings.WhatsApp) != "" {
		return settings.WhatsApp
	}
	if s.fallbackNumber != "" {
		return s.fallbackNumber
	}
	return model.DefaultSettings().WhatsApp
}
