package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/notemind/notemind/store"
)

func (d *DB) CreateHealthMetric(ctx context.Context, create *store.HealthMetric) (*store.HealthMetric, error) {
	fields := []string{"creator_id", "metric", "value"}
	placeholderValues := []any{create.CreatorID, create.Metric, create.Value}

	stmt := `INSERT INTO health_metric (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create health metric: %w", err)
	}

	return create, nil
}

func (d *DB) ListHealthMetrics(ctx context.Context, find *store.FindHealthMetric) ([]*store.HealthMetric, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "health_metric.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "health_metric.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Metric; v != nil {
		where, args = append(where, "health_metric.metric = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, creator_id, created_ts, metric, value
		FROM health_metric
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY health_metric.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query health metrics: %w", err)
	}
	defer rows.Close()

	list := make([]*store.HealthMetric, 0)
	for rows.Next() {
		var metric store.HealthMetric
		if err := rows.Scan(
			&metric.ID,
			&metric.CreatorID,
			&metric.CreatedTs,
			&metric.Metric,
			&metric.Value,
		); err != nil {
			return nil, fmt.Errorf("failed to scan health metric: %w", err)
		}
		list = append(list, &metric)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate health metrics: %w", err)
	}

	return list, nil
}
