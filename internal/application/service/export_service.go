package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/donation-desk/internal/application/port"
	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// RegisterExport is a rendered donation register
type RegisterExport struct {
	FileName string
	Path     string
	Content  []byte
}

// ExportService renders and archives donation registers
type ExportService interface {
	DonationRegister(ctx context.Context, filter entity.DonationFilter) (*RegisterExport, error)
}

type exportServiceImpl struct {
	donationRepo port.DonationRepository
	settings     SettingsService
	writer       port.RegisterWriter
	storage      port.FileStorage
	logger       Logger
	now          func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(
	donationRepo port.DonationRepository,
	settings SettingsService,
	writer port.RegisterWriter,
	storage port.FileStorage,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		donationRepo: donationRepo,
		settings:     settings,
		writer:       writer,
		storage:      storage,
		logger:       logger,
		now:          time.Now,
	}
}

// DonationRegister renders the donations matching filter and keeps a copy
// under exports/ in file storage.
func (s *exportServiceImpl) DonationRegister(ctx context.Context, filter entity.DonationFilter) (*RegisterExport, error) {
	donations, err := s.donationRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	title := fmt.Sprintf("Donation Register - %s - %s", settings.CompanyForDonations(), now.Format("2006-01-02"))

	content, err := s.writer.WriteDonationRegister(title, donations)
	if err != nil {
		s.logger.Error("Failed to render donation register", "error", err)
		return nil, fmt.Errorf("render register: %w", err)
	}

	export := &RegisterExport{
		FileName: fmt.Sprintf("donation-register-%s.xlsx", now.Format("20060102-150405")),
		Content:  content,
	}
	export.Path = "exports/" + export.FileName

	if err := s.storage.Save(ctx, export.Path, content); err != nil {
		s.logger.Error("Failed to archive donation register", "error", err, "path", export.Path)
		return nil, fmt.Errorf("archive register: %w", err)
	}

	s.logger.Info("Donation register exported", "path", export.Path, "rows", len(donations))
	return export, nil
}
