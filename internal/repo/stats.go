package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ExecutionsStats returns the number of executions (optionally for one
// command) and the newest CreatedAt among them. It feeds the weak ETag of the
// executions listing. maxCreatedAt is nil when there are no rows.
func ExecutionsStats(ctx context.Context, db *gorm.DB, command string) (count int64, maxCreatedAt *time.Time, err error) {
	q := executionsScope(db.WithContext(ctx), command)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// ORDER BY instead of MAX(): SQLite returns MAX() of a DATETIME as TEXT.
	var row struct {
		CreatedAt time.Time
	}
	if err = executionsScope(db.WithContext(ctx), command).
		Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
