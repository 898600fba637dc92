package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key should read as absent")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected IsReplay=true")
	}
}

func TestIdempotencyValidator_NoHeader_SkipsLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return false, nil
	}))
	r.POST("/commands/:name", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commands/version", nil))
	if w.Code != http.StatusNoContent || called {
		t.Fatalf("code=%d lookupCalled=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		opts IdempotencyOptions
		key  string
	}{
		{IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
		{IdempotencyOptions{}, "has space"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(IdempotencyValidator(tc.opts, nil))
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderIdempotencyKey, tc.key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: expected 400, got %d", tc.key, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: unexpected body %v (%v)", tc.key, body, err)
		}
	}
}

func TestIdempotencyValidator_LookupMissHitAndError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type result struct {
		found bool
		err   error
	}
	cases := map[string]struct {
		res        result
		wantReplay bool
	}{
		"miss":  {result{false, nil}, false},
		"hit":   {result{true, nil}, true},
		"error": {result{true, errors.New("db down")}, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var gotClient, gotCmd, gotKey string
			lookup := func(_ context.Context, clientID, cmd, key string, now time.Time) (bool, error) {
				if now.IsZero() {
					t.Fatalf("now not populated")
				}
				gotClient, gotCmd, gotKey = clientID, cmd, key
				return tc.res.found, tc.res.err
			}
			r := gin.New()
			r.Use(ClientID(), IdempotencyValidator(IdempotencyOptions{}, lookup))
			r.POST("/commands/:name", func(c *gin.Context) {
				if key, ok := GetIdempotencyKey(c); !ok || key != "k-9" {
					t.Fatalf("key not stashed: %q", key)
				}
				if IsReplay(c) != tc.wantReplay || IsRateBypass(c) != tc.wantReplay {
					t.Fatalf("replay=%v bypass=%v; want %v", IsReplay(c), IsRateBypass(c), tc.wantReplay)
				}
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/commands/describe-api", nil)
			req.Header.Set(HeaderIdempotencyKey, "k-9")
			req.Header.Set(HeaderClientID, "cli-1")
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if gotClient != "cli-1" || gotCmd != "describe-api" || gotKey != "k-9" {
				t.Fatalf("lookup args: %q %q %q", gotClient, gotCmd, gotKey)
			}
		})
	}
}
