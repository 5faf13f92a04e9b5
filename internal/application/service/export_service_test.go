package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

type mockRegisterWriter struct {
	title string
	rows  int
	err   error
}

func (m *mockRegisterWriter) WriteDonationRegister(title string, donations []*entity.Donation) ([]byte, error) {
	m.title = title
	m.rows = len(donations)
	if m.err != nil {
		return nil, m.err
	}
	return []byte("xlsx"), nil
}

type mockFileStorage struct {
	files map[string][]byte
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockFileStorage) GetFullPath(relativePath string) string {
	return "/data/" + relativePath
}

func TestExportService_DonationRegister(t *testing.T) {
	f := newFixture()
	f.submittedDonation(nil)

	writer := &mockRegisterWriter{}
	storage := &mockFileStorage{}
	svc := NewExportService(f.donationRepo, f.settings, writer, storage, testLogger{}).(*exportServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }

	export, err := svc.DonationRegister(context.Background(), entity.DonationFilter{})
	require.NoError(t, err)

	assert.Equal(t, "donation-register-20260301-103000.xlsx", export.FileName)
	assert.Equal(t, "exports/donation-register-20260301-103000.xlsx", export.Path)
	assert.Equal(t, []byte("xlsx"), storage.files[export.Path])
	assert.Equal(t, "Donation Register - Helping Hands - 2026-03-01", writer.title)
	assert.Equal(t, 1, writer.rows)
}

func TestExportService_WriterFailure(t *testing.T) {
	f := newFixture()
	storage := &mockFileStorage{}
	svc := NewExportService(f.donationRepo, f.settings, &mockRegisterWriter{err: errors.New("bad")}, storage, testLogger{})

	_, err := svc.DonationRegister(context.Background(), entity.DonationFilter{})
	assert.Error(t, err)
	assert.Empty(t, storage.files)
}
