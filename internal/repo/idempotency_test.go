package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/novaordis/rest-playground/internal/domain"
)

func TestGetIdempotency_BlankScope_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	for _, tc := range [][2]string{{"  ", "k1"}, {"version", " "}} {
		rec, err := GetIdempotency(context.Background(), db, "c1", tc[0], tc[1], now)
		if rec != nil || err != ErrNotFound {
			t.Fatalf("expected (nil, ErrNotFound) for %q/%q, got (%v, %v)", tc[0], tc[1], rec, err)
		}
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:          "expired",
		ClientID:    "c1",
		Command:     "version",
		Key:         "k1",
		ExecutionID: "e1",
		Status:      501,
		CreatedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	if rec, err := GetIdempotency(context.Background(), db, "c1", "version", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "c1", "version", "missing", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec, err)
	}
}

func TestCreateIdempotency_ThenGet_ThenDuplicate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	rec, err := CreateIdempotency(ctx, db, "c1", "describe-api", "k1", "e1", 200, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" || !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "c1", "describe-api", "k1", time.Now().UTC())
	if err != nil || got.ExecutionID != "e1" || got.Status != 200 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	// Another client may reuse the same key.
	if _, err := CreateIdempotency(ctx, db, "c2", "describe-api", "k1", "e2", 200, time.Hour); err != nil {
		t.Fatalf("other client: %v", err)
	}

	_, err = CreateIdempotency(ctx, db, "c1", "describe-api", "k1", "e3", 200, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
