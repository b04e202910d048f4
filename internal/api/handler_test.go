package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLimit_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil)

	limit, err := parseLimit(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, limit)
	}
}

func TestParseLimit_CustomValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=25", nil)

	limit, err := parseLimit(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if limit != 25 {
		t.Errorf("expected limit 25, got %d", limit)
	}
}

func TestParseLimit_AtMax(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=500", nil)

	limit, err := parseLimit(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if limit != MaxLimit {
		t.Errorf("expected limit %d, got %d", MaxLimit, limit)
	}
}

func TestParseLimit_ExceedsMax(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=501", nil)

	_, err := parseLimit(req)
	if err == nil {
		t.Fatal("expected error for limit exceeding max, got nil")
	}

	expected := "limit exceeds maximum of 500"
	if err.Error() != expected {
		t.Errorf("expected error %q, got %q", expected, err.Error())
	}
}

func TestParseLimit_Negative(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=-1", nil)

	if _, err := parseLimit(req); err == nil {
		t.Fatal("expected error for negative limit, got nil")
	}
}

func TestParseLimit_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=abc", nil)

	if _, err := parseLimit(req); err == nil {
		t.Fatal("expected error for invalid limit, got nil")
	}
}

func TestParseLimit_Zero(t *testing.T) {
	// limit=0 should be treated as "use default"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/snapshots?limit=0", nil)

	limit, err := parseLimit(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if limit != DefaultLimit {
		t.Errorf("expected default limit %d for limit=0, got %d", DefaultLimit, limit)
	}
}

func TestJobIDFromPath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		action string
		wantID string
		wantOK bool
	}{
		{"plain id", "/jobs/abc123", "", "abc123", true},
		{"plain id trailing slash", "/jobs/abc123/", "", "abc123", true},
		{"missing id", "/jobs/", "", "", false},
		{"extra segment without action", "/jobs/abc123/executions", "", "", false},
		{"executions action", "/jobs/abc123/executions", "executions", "abc123", true},
		{"enable action", "/jobs/abc123/enable", "enable", "abc123", true},
		{"wrong action", "/jobs/abc123/enable", "disable", "", false},
		{"action without id", "/jobs//enable", "enable", "", false},
		{"not a jobs path", "/snapshots/abc123", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := jobIDFromPath(tt.path, tt.action)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
		})
	}
}
