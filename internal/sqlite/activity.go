package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
)

var (
	_ activity.Repository           = (*ActivityRepository)(nil)
	_ descriptor.ActivityRepository = (*ActivityRepository)(nil)
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends an activity entry and fills in its ID, tenant and timestamp
func (r *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (
			tenant_id, descriptor_id, activity_type, summary, details, created_sec, created_nsec
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	sec, nsec := splitTimestamp(createdAt)
	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		entry.DescriptorID,
		string(entry.ActivityType),
		entry.Summary,
		sql.NullString{String: entry.Details, Valid: entry.Details != ""},
		sec,
		nsec,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.TenantID = tenantID
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	conditions := []string{"tenant_id = ?"}
	args := []any{tenantID}

	if opts.DescriptorID != nil {
		conditions = append(conditions, "descriptor_id = ?")
		args = append(args, *opts.DescriptorID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, string(*opts.ActivityType))
	}
	if !opts.Since.IsZero() {
		sec, nsec := splitTimestamp(opts.Since)
		conditions = append(conditions, "(created_sec > ? OR (created_sec = ? AND created_nsec >= ?))")
		args = append(args, sec, sec, nsec)
	}

	query := `
		SELECT id, tenant_id, descriptor_id, activity_type, summary, details, created_sec, created_nsec
		FROM activity_log
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_sec DESC, created_nsec DESC, id DESC`

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}

func scanActivity(s scanner) (activity.ActivityEntry, error) {
	var (
		entry       activity.ActivityEntry
		typ         string
		details     sql.NullString
		createdSec  int64
		createdNsec int64
	)
	if err := s.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.DescriptorID,
		&typ,
		&entry.Summary,
		&details,
		&createdSec,
		&createdNsec,
	); err != nil {
		return activity.ActivityEntry{}, err
	}

	entry.ActivityType = activity.ActivityType(typ)
	entry.Details = details.String
	entry.CreatedAt = joinTimestamp(createdSec, createdNsec)

	return entry, nil
}
