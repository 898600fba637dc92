// Package domain defines the persistence models of the command service.
// They are mapped with GORM and shared by the repo and services layers.
package domain

import "time"

// Execution outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Execution records one dispatched command invocation.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Command: registry name of the executed command.
//   - ClientID: caller identity (X-Client-ID header or client IP).
//   - Outcome: "succeeded" or "failed" (enforced by DB constraint).
//   - Status: HTTP status the invocation was reported with.
//   - Error: failure message, empty on success.
//   - Result: JSON-encoded report of a successful command, if any.
//   - DurationMS: wall time spent in Execute.
type Execution struct {
	ID         string    `json:"id"                gorm:"type:char(36);primaryKey"`
	Command    string    `json:"command"           gorm:"type:varchar(64);not null;index:idx_exec_cmd,priority:1"`
	ClientID   string    `json:"client_id"         gorm:"type:varchar(64);not null;index"`
	Outcome    string    `json:"outcome"           gorm:"type:varchar(16);not null;check:outcome IN ('succeeded','failed')"`
	Status     int       `json:"status"            gorm:"not null"`
	Error      string    `json:"error,omitempty"   gorm:"type:text"`
	Result     string    `json:"-"                 gorm:"type:text"`
	DurationMS int64     `json:"duration_ms"       gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"        gorm:"index:idx_exec_cmd,priority:2"`
}

// TableName returns the database table name for Execution.
func (Execution) TableName() string { return "executions" }

// Succeeded reports whether the execution completed without error.
func (e Execution) Succeeded() bool { return e.Outcome == OutcomeSucceeded }
