package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/runlog"
)

func seededStore(t *testing.T) runlog.LogStore {
	t.Helper()
	store, err := runlog.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	recs := []runlog.RunRecord{
		{RunID: "r1", Timestamp: base, Line: "north", Objective: model.ObjectiveTime, Strategy: "greedy"},
		{RunID: "r1", Timestamp: base, Line: "north", Objective: model.ObjectiveLostSales, Strategy: "exact"},
		{RunID: "r2", Timestamp: base.Add(48 * time.Hour), Line: "south", Objective: model.ObjectiveTime, Strategy: "search"},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func get(t *testing.T, h http.Handler, target, token string) (*httptest.ResponseRecorder, []runlog.RunRecord) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var recs []runlog.RunRecord
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&recs); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rr, recs
}

func TestHandler_AuthAndFilters(t *testing.T) {
	h := NewHandler(seededStore(t), "secret")

	if rr, _ := get(t, h, Path, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr, _ := get(t, h, Path, "wrong"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", rr.Code)
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?run_id=r1", 2},
		{"?run_id=r1&objective=lost_sales", 1},
		{"?line=south", 1},
		{"?start=2024-03-02T00:00:00Z", 1},
		{"?end=2024-03-02T00:00:00Z", 2},
		{"?run_id=none", 0},
	}
	for _, c := range cases {
		rr, recs := get(t, h, Path+c.query, "secret")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", c.query, rr.Code)
		}
		if len(recs) != c.want {
			t.Fatalf("%s: got %d records, want %d", c.query, len(recs), c.want)
		}
	}
}

func TestHandler_BadRequests(t *testing.T) {
	h := NewHandler(seededStore(t), "")
	for _, q := range []string{"?start=yesterday", "?objective=speed"} {
		if rr, _ := get(t, h, Path+q, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, Path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHandler_EmptyStoreIsEmptyArray(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(runlog.NopStore{}, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path, nil))
	if body := rr.Body.String(); body != "[]\n" {
		t.Fatalf("unexpected body %q", body)
	}
}
