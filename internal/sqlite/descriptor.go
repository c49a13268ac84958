package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/rpggio/synchrokit/internal/repository"
)

var _ descriptor.Repository = (*DescriptorRepository)(nil)

// DescriptorRepository implements descriptor.Repository for SQLite
type DescriptorRepository struct {
	db *DB
}

// NewDescriptorRepository creates a new DescriptorRepository
func NewDescriptorRepository(db *DB) *DescriptorRepository {
	return &DescriptorRepository{db: db}
}

// Create inserts a new descriptor
func (r *DescriptorRepository) Create(ctx context.Context, tenantID string, desc *descriptor.ObjectDescriptor) error {
	query := `
		INSERT INTO object_descriptors (tenant_id, identifier, name, last_used_sec, last_used_nsec, used_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	lastUsedSec, lastUsedNsec := splitNullTimestamp(desc.LastUsedDate())
	_, err := r.db.ExecContext(ctx, query,
		tenantID,
		desc.Identifier(),
		desc.Name(),
		lastUsedSec,
		lastUsedNsec,
		desc.UsedCount(),
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create descriptor: %w", err)
	}

	return nil
}

// Get retrieves a descriptor by identifier
func (r *DescriptorRepository) Get(ctx context.Context, tenantID string, identifier int) (*descriptor.ObjectDescriptor, error) {
	return r.get(ctx, r.db, tenantID, identifier)
}

// Update overwrites the mutable fields of an existing descriptor
func (r *DescriptorRepository) Update(ctx context.Context, tenantID string, desc *descriptor.ObjectDescriptor) error {
	query := `
		UPDATE object_descriptors
		SET name = ?, last_used_sec = ?, last_used_nsec = ?, used_count = ?
		WHERE tenant_id = ? AND identifier = ?
	`

	lastUsedSec, lastUsedNsec := splitNullTimestamp(desc.LastUsedDate())
	result, err := r.db.ExecContext(ctx, query,
		desc.Name(),
		lastUsedSec,
		lastUsedNsec,
		desc.UsedCount(),
		tenantID,
		desc.Identifier(),
	)
	if err != nil {
		return fmt.Errorf("failed to update descriptor: %w", err)
	}

	return requireAffected(result)
}

// Delete removes a descriptor
func (r *DescriptorRepository) Delete(ctx context.Context, tenantID string, identifier int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM object_descriptors WHERE tenant_id = ? AND identifier = ?`,
		tenantID, identifier,
	)
	if err != nil {
		return fmt.Errorf("failed to delete descriptor: %w", err)
	}

	return requireAffected(result)
}

// List returns descriptors for a tenant in the requested order
func (r *DescriptorRepository) List(ctx context.Context, tenantID string, opts descriptor.ListOptions) ([]*descriptor.ObjectDescriptor, error) {
	query := `
		SELECT identifier, name, last_used_sec, last_used_nsec, used_count
		FROM object_descriptors
		WHERE tenant_id = ?
	`

	switch opts.OrderBy {
	case descriptor.OrderByLastUsed:
		query += " ORDER BY last_used_sec IS NULL, last_used_sec DESC, last_used_nsec DESC, identifier ASC"
	case descriptor.OrderByUsedCount:
		query += " ORDER BY used_count DESC, identifier ASC"
	default:
		query += " ORDER BY identifier ASC"
	}

	args := []interface{}{tenantID}
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
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}
	defer rows.Close()

	var descs []*descriptor.ObjectDescriptor
	for rows.Next() {
		desc, err := scanDescriptor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan descriptor: %w", err)
		}
		descs = append(descs, desc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating descriptor rows: %w", err)
	}

	return descs, nil
}

// RecordUse atomically increments the use count, stamps the last used time
// and returns the updated descriptor. A count already at the largest int is
// left alone and reported as repository.ErrOutOfRange.
func (r *DescriptorRepository) RecordUse(ctx context.Context, tenantID string, identifier int, at time.Time) (*descriptor.ObjectDescriptor, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE object_descriptors
		SET used_count = used_count + 1, last_used_sec = ?, last_used_nsec = ?
		WHERE tenant_id = ? AND identifier = ? AND used_count < ?
	`

	sec, nsec := splitNullTimestamp(at)
	result, err := tx.ExecContext(ctx, updateQuery, sec, nsec, tenantID, identifier, math.MaxInt)
	if err != nil {
		return nil, fmt.Errorf("failed to record use: %w", err)
	}

	err = requireAffected(result)
	if errors.Is(err, repository.ErrNotFound) {
		// Either the row is missing or its count cannot grow.
		if _, getErr := r.get(ctx, tx, tenantID, identifier); getErr != nil {
			return nil, getErr
		}
		return nil, repository.ErrOutOfRange
	}
	if err != nil {
		return nil, err
	}

	desc, err := r.get(ctx, tx, tenantID, identifier)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return desc, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DescriptorRepository) get(ctx context.Context, q queryRower, tenantID string, identifier int) (*descriptor.ObjectDescriptor, error) {
	query := `
		SELECT identifier, name, last_used_sec, last_used_nsec, used_count
		FROM object_descriptors
		WHERE tenant_id = ? AND identifier = ?
	`

	desc, err := scanDescriptor(q.QueryRowContext(ctx, query, tenantID, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get descriptor: %w", err)
	}

	return desc, nil
}

func scanDescriptor(s scanner) (*descriptor.ObjectDescriptor, error) {
	var (
		identifier   int
		name         string
		lastUsedSec  sql.NullInt64
		lastUsedNsec sql.NullInt64
		usedCount    int
	)
	if err := s.Scan(&identifier, &name, &lastUsedSec, &lastUsedNsec, &usedCount); err != nil {
		return nil, err
	}

	desc := new(descriptor.ObjectDescriptor)
	desc.SetIdentifier(identifier)
	desc.SetName(name)
	desc.SetUsedCount(usedCount)
	if lastUsedSec.Valid {
		desc.SetLastUsedDate(joinTimestamp(lastUsedSec.Int64, lastUsedNsec.Int64))
	}

	return desc, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
