package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "exports/register.xlsx", []byte("data")))
	assert.True(t, s.Exists(ctx, "exports/register.xlsx"))
	assert.False(t, s.Exists(ctx, "exports/register.tmp"))
	assert.False(t, s.Exists(ctx, "exports/register.xlsx.tmp"))

	content, err := s.Read(ctx, "exports/register.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	_, err = s.Read(ctx, "exports/missing.xlsx")
	assert.Error(t, err)
}

func TestLocalFileStorage_RejectsEscapingPaths(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	assert.Error(t, s.Save(ctx, "../outside.txt", []byte("x")))
	_, err := s.Read(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.False(t, s.Exists(ctx, "../outside.txt"))
}
