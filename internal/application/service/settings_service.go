package service

import (
	"context"
	"fmt"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// SettingsService reads and updates NonProfitSettings
type SettingsService interface {
	// Get never returns nil settings; unsaved settings read as zero values
	Get(ctx context.Context) (*entity.NonProfitSettings, error)
	Update(ctx context.Context, settings *entity.NonProfitSettings) error

	// Seed saves settings and donor types only when no settings exist yet
	Seed(ctx context.Context, settings *entity.NonProfitSettings, donorTypes []entity.DonorType) error
}

type settingsServiceImpl struct {
	settingsRepo  port.SettingsRepository
	donorTypeRepo port.DonorTypeRepository
	txManager     port.TransactionManager
	logger        Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	settingsRepo port.SettingsRepository,
	donorTypeRepo port.DonorTypeRepository,
	txManager port.TransactionManager,
	logger Logger,
) SettingsService {
	return &settingsServiceImpl{
		settingsRepo:  settingsRepo,
		donorTypeRepo: donorTypeRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

func (s *settingsServiceImpl) Get(ctx context.Context) (*entity.NonProfitSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings == nil {
		return &entity.NonProfitSettings{}, nil
	}
	return settings, nil
}

func (s *settingsServiceImpl) Update(ctx context.Context, settings *entity.NonProfitSettings) error {
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("Non profit settings updated", "company", settings.Company)
	return nil
}

func (s *settingsServiceImpl) Seed(ctx context.Context, settings *entity.NonProfitSettings, donorTypes []entity.DonorType) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i := range donorTypes {
			if err := s.donorTypeRepo.Upsert(txCtx, &donorTypes[i]); err != nil {
				return fmt.Errorf("seed donor type %s: %w", donorTypes[i].Name, err)
			}
		}

		existing, err := s.settingsRepo.Get(txCtx)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		if existing != nil {
			return nil
		}

		if err := s.settingsRepo.Save(txCtx, settings); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		s.logger.Info("Non profit settings seeded from configuration",
			"company", settings.Company,
			"donor_types", len(donorTypes),
		)
		return nil
	})
}
