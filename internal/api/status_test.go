package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"refalign/internal/progress"
)

type mockScanner struct {
	records []progress.Record
	err     error
}

func (m *mockScanner) Scan() ([]progress.Record, error) {
	return m.records, m.err
}

func TestHealth(t *testing.T) {
	h := NewStatusHandler(&mockScanner{}, nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestProgress(t *testing.T) {
	scanner := &mockScanner{records: []progress.Record{
		{GroupKey: "jan/standup", Partition: "jan", Group: "standup", Expected: 3, Completed: 2},
		{GroupKey: "jan/retro", Partition: "jan", Group: "retro", Expected: 2, Completed: 2},
	}}
	h := NewStatusHandler(scanner, nil)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/progress", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body progressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Groups) != 2 {
		t.Fatalf("groups = %d", len(body.Groups))
	}
	if body.Groups[0].Status != "partial" || body.Groups[1].Status != "complete" {
		t.Errorf("statuses = %q, %q", body.Groups[0].Status, body.Groups[1].Status)
	}
	if body.Remaining != 1 {
		t.Errorf("remaining = %d", body.Remaining)
	}
}

func TestProgressScanFailure(t *testing.T) {
	h := NewStatusHandler(&mockScanner{err: errors.New("disk gone")}, nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/progress", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
