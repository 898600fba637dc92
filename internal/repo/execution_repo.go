package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novaordis/rest-playground/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateExecution inserts e. A missing ID is filled with a UUID and a zero
// CreatedAt with the current UTC time.
func CreateExecution(ctx context.Context, db *gorm.DB, e *domain.Execution) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(e).Error
}

// GetExecution fetches one execution by ID, or ErrNotFound.
func GetExecution(ctx context.Context, db *gorm.DB, id string) (*domain.Execution, error) {
	var e domain.Execution
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// executionsScope filters by command when one is given.
func executionsScope(db *gorm.DB, command string) *gorm.DB {
	q := db.Model(&domain.Execution{})
	if command != "" {
		q = q.Where("command = ?", command)
	}
	return q
}

// CountExecutions returns the number of executions, optionally for a single
// command.
func CountExecutions(ctx context.Context, db *gorm.DB, command string) (int64, error) {
	var total int64
	err := executionsScope(db.WithContext(ctx), command).Count(&total).Error
	return total, err
}

// ListExecutionsPage returns executions newest first. The caller computes
// offset and limit.
func ListExecutionsPage(ctx context.Context, db *gorm.DB, command string, offset, limit int) ([]domain.Execution, error) {
	var out []domain.Execution
	err := executionsScope(db.WithContext(ctx), command).
		Order("created_at desc").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
