package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/donation-desk/internal/application/port"
	"go.uber.org/zap"
)

// NamingSeries hands out sequential document names from the naming_series table.
// A series such as "DON-.YYYY.-" expands to the prefix "DON-2026-" and every
// prefix keeps its own five digit counter.
type NamingSeries struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewNamingSeries creates a naming series backed by db
func NewNamingSeries(db *sql.DB, logger *zap.Logger) *NamingSeries {
	return &NamingSeries{db: db, logger: logger, now: time.Now}
}

// Next returns the next name in series
func (n *NamingSeries) Next(ctx context.Context, series string) (string, error) {
	prefix := ExpandSeries(series, n.now())

	var current int64
	err := ExecutorFor(ctx, n.db).QueryRowContext(ctx, `
		INSERT INTO naming_series (prefix, current) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET current = current + 1
		RETURNING current
	`, prefix).Scan(&current)
	if err != nil {
		n.logger.Error("Failed to advance naming series", zap.String("prefix", prefix), zap.Error(err))
		return "", fmt.Errorf("failed to advance naming series %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s%05d", prefix, current), nil
}

// ExpandSeries replaces the date placeholders of series with values from t
func ExpandSeries(series string, t time.Time) string {
	r := strings.NewReplacer(
		".YYYY.", t.Format("2006"),
		".YY.", t.Format("06"),
		".MM.", t.Format("01"),
	)
	return r.Replace(series)
}

var _ port.NamingSeries = (*NamingSeries)(nil)
