package store

import (
	"context"
)

// HealthMetric is a free-form well-being record, e.g. sleep_quality=poor.
type HealthMetric struct {
	ID        int32
	CreatorID int32
	CreatedTs int64

	Metric string
	Value  string
}

// FindHealthMetric is the find condition for health metric.
type FindHealthMetric struct {
	ID        *int32
	CreatorID *int32
	Metric    *string

	Limit  *int
	Offset *int
}

// CreateHealthMetric creates a new health metric record.
func (s *Store) CreateHealthMetric(ctx context.Context, create *HealthMetric) (*HealthMetric, error) {
	return s.driver.CreateHealthMetric(ctx, create)
}

// ListHealthMetrics lists health metrics with filter.
func (s *Store) ListHealthMetrics(ctx context.Context, find *FindHealthMetric) ([]*HealthMetric, error) {
	return s.driver.ListHealthMetrics(ctx, find)
}
