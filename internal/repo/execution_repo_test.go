package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/novaordis/rest-playground/internal/domain"
)

func TestExecutions_CreateGetCountList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Now().UTC().Add(-time.Hour)

	rows := []domain.Execution{
		{ID: "e1", Command: "version", ClientID: "c1", Outcome: domain.OutcomeFailed, Status: 501, CreatedAt: base},
		{ID: "e2", Command: "describe-api", ClientID: "c1", Outcome: domain.OutcomeSucceeded, Status: 200, CreatedAt: base.Add(time.Minute)},
		{ID: "e3", Command: "version", ClientID: "c2", Outcome: domain.OutcomeFailed, Status: 501, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		if err := CreateExecution(ctx, db, &rows[i]); err != nil {
			t.Fatalf("create %s: %v", rows[i].ID, err)
		}
	}

	got, err := GetExecution(ctx, db, "e2")
	if err != nil || got.Command != "describe-api" || !got.Succeeded() {
		t.Fatalf("GetExecution e2 = %+v, %v", got, err)
	}
	if _, err := GetExecution(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if n, err := CountExecutions(ctx, db, ""); err != nil || n != 3 {
		t.Fatalf("CountExecutions all = %d, %v", n, err)
	}
	if n, err := CountExecutions(ctx, db, "version"); err != nil || n != 2 {
		t.Fatalf("CountExecutions version = %d, %v", n, err)
	}

	page, err := ListExecutionsPage(ctx, db, "", 0, 2)
	if err != nil {
		t.Fatalf("ListExecutionsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "e3" || page[1].ID != "e2" {
		t.Fatalf("unexpected first page: %+v", page)
	}
	page, err = ListExecutionsPage(ctx, db, "version", 1, 10)
	if err != nil || len(page) != 1 || page[0].ID != "e1" {
		t.Fatalf("unexpected filtered page: %+v, %v", page, err)
	}
}
