package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novaordis/rest-playground/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (client_id, command, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the record for (clientID, command, key) that is
// still valid at now, or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, clientID, command, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(command) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("client_id = ? AND command = ? AND key = ? AND expires_at > ?", clientID, command, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency binds key to executionID for ttl and returns ErrDuplicate
// when the tuple is already taken.
func CreateIdempotency(ctx context.Context, db *gorm.DB, clientID, command, key, executionID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Command:     command,
		Key:         key,
		ExecutionID: executionID,
		Status:      status,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite reports UNIQUE violations as plain text.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
