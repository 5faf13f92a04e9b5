package port

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

// FileStorage defines file storage operations
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	GetFullPath(relativePath string) string
}

// RegisterWriter renders donations as a spreadsheet register
type RegisterWriter interface {
	WriteDonationRegister(title string, donations []*entity.Donation) ([]byte, error)
}
