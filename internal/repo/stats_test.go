package repo

import (
	"context"
	"testing"
	"time"

	"github.com/novaordis/rest-playground/internal/domain"
)

func TestExecutionsStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	n, ts, err := ExecutionsStats(ctx, db, "")
	if err != nil || n != 0 || ts != nil {
		t.Fatalf("empty stats = (%d, %v, %v)", n, ts, err)
	}

	older := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, e := range []*domain.Execution{
		{Command: "version", ClientID: "c", Outcome: domain.OutcomeFailed, Status: 501, CreatedAt: older},
		{Command: "describe-api", ClientID: "c", Outcome: domain.OutcomeSucceeded, Status: 200, CreatedAt: newer},
	} {
		if err := CreateExecution(ctx, db, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, ts, err = ExecutionsStats(ctx, db, "")
	if err != nil || n != 2 || ts == nil || !ts.Equal(newer) {
		t.Fatalf("all stats = (%d, %v, %v); want (2, %v)", n, ts, err, newer)
	}
	n, ts, err = ExecutionsStats(ctx, db, "version")
	if err != nil || n != 1 || ts == nil || !ts.Equal(older) {
		t.Fatalf("version stats = (%d, %v, %v); want (1, %v)", n, ts, err, older)
	}
}
