package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

// DefaultHistoryLimit 历史列表默认条数
const DefaultHistoryLimit = 50

// RecordConversion 写入一条转换历史
func (s *Store) RecordConversion(ctx context.Context, c model.Conversion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (
			id, source, source_name, tab, month_label,
			input_rows, summary_rows, bytes, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Source, c.SourceName, c.Tab, c.MonthLabel,
		c.InputRows, c.SummaryRows, c.Bytes, c.Status, c.Error, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}

// ListConversions 最近的转换历史（新的在前）
func (s *Store) ListConversions(ctx context.Context, limit int) ([]model.Conversion, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, source_name, tab, month_label,
		       input_rows, summary_rows, bytes, status, error, created_at
		FROM conversions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Conversion, 0)
	for rows.Next() {
		var c model.Conversion
		if err := rows.Scan(
			&c.ID, &c.Source, &c.SourceName, &c.Tab, &c.MonthLabel,
			&c.InputRows, &c.SummaryRows, &c.Bytes, &c.Status, &c.Error, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountConversions 按状态统计转换次数
func (s *Store) CountConversions(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM conversions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
