package modelhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassify_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/classify" {
			t.Errorf("path = %s, want /api/v1/classify", r.URL.Path)
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "water leak" {
			t.Errorf("text = %q, want %q", req.Text, "water leak")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"category": {"Plumbing": 0.8, "General": 0.2},
			"priority": {"High": 0.6, "Medium": 0.4}
		}`))
	}))
	defer srv.Close()

	cls, err := New(srv.URL).Classify(context.Background(), "water leak")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if label, prob := cls.Category.Top(); label != "Plumbing" || prob != 0.8 {
		t.Errorf("category top = %q/%v, want Plumbing/0.8", label, prob)
	}
	if label, prob := cls.Priority.Top(); label != "High" || prob != 0.6 {
		t.Errorf("priority top = %q/%v, want High/0.6", label, prob)
	}
}

func TestClassify_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Classify(context.Background(), "water leak"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClassify_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Classify(context.Background(), "water leak"); err == nil {
		t.Fatal("expected error on invalid JSON")
	}
}

func TestClassify_EmptyDistribution(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"category": {}, "priority": {"High": 1.0}}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Classify(context.Background(), "water leak"); err == nil {
		t.Fatal("expected error on empty category distribution")
	}
}

func TestClassify_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // closed on purpose

	if _, err := New(srv.URL).Classify(context.Background(), "water leak"); err == nil {
		t.Fatal("expected error when service is unreachable")
	}
}
