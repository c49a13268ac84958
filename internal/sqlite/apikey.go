package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/synchrokit/internal/repository"
)

// APIKeyRepository stores hashed bearer tokens per tenant
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create issues a new token for the tenant and stores only its hash.
// The plain token is returned once and cannot be recovered later.
func (r *APIKeyRepository) Create(ctx context.Context, tenantID, description string) (string, error) {
	if strings.TrimSpace(tenantID) == "" {
		return "", repository.ErrInvalidInput
	}

	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, tenant_id, description) VALUES (?, ?, ?)`,
		HashToken(token), tenantID, description,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create api key: %w", err)
	}

	return token, nil
}

// ResolveTenant returns the tenant owning the token and stamps its last use
func (r *APIKeyRepository) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)

	var tenantID string
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&tenantID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && tenantID == "") {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash); err != nil {
		return "", fmt.Errorf("failed to stamp api key: %w", err)
	}

	return tenantID, nil
}

// HashToken returns the hex SHA-256 of a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
