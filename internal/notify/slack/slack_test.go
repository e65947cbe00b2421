package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/resolve/internal/ticket"
)

func criticalTicket() *ticket.Ticket {
	return &ticket.Ticket{
		ID:            "01JN123",
		ComplaintText: "Sparks coming out of the corridor socket",
		Category:      "Electrical",
		Priority:      "Critical",
		Confidence:    0.92,
		Status:        ticket.StatusOpen,
		Valid:         true,
		CreatedAt:     time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
	}
}

func TestSend_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(context.Background(), criticalTicket()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, complaint, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	// Verify header contains category and critical emoji
	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "Electrical") {
		t.Errorf("header text = %q, want to contain Electrical", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for critical priority")
	}
}

func TestSend_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Send(context.Background(), &ticket.Ticket{}); err != nil {
		t.Fatalf("Send with empty URL should be no-op, got: %v", err)
	}
}

func TestSend_TruncatesLongComplaint(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tk := criticalTicket()
	tk.ComplaintText = strings.Repeat("x", 4000)

	n := New(srv.URL)
	if err := n.Send(context.Background(), tk); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks := got["blocks"].([]any)
	complaintSection := blocks[4].(map[string]any)
	text := complaintSection["text"].(map[string]any)["text"].(string)

	// Text includes the "*Complaint*\n\n" prefix, so the complaint portion is
	// what follows, truncated to maxComplaintLen chars.
	if len(text) > maxComplaintLen+len("*Complaint*\n\n") {
		t.Errorf("complaint text length = %d, expected <= %d", len(text), maxComplaintLen+len("*Complaint*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated complaint to end with ...")
	}
}

func TestPriorityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority string
		want     string
	}{
		{"Critical", "\U0001f534"},
		{"critical", "\U0001f534"},
		{"High", "\U0001f7e1"},
		{"Medium", "\U0001f7e2"},
		{"Low", "\U0001f7e2"},
		{"", "\U0001f7e2"},
	}

	for _, tt := range tests {
		if got := priorityEmoji(tt.priority); got != tt.want {
			t.Errorf("priorityEmoji(%q) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("Water leak in block C", "Plumbing", "High")
	f.Add("", "", "")
	f.Add("<@U123> mention", "IT", "*bold* _italic_ ~strike~")
	f.Add("complaint\x00\x01\x02", "cat\nline", "pri\ttab")
	f.Add(strings.Repeat("A", 10000), "Electrical", "Critical")
	f.Add("```code block``` and <http://example.com|link>", "General", "Medium")

	f.Fuzz(func(t *testing.T, complaint, category, priority string) {
		tk := &ticket.Ticket{
			ID:            "fuzz-id",
			ComplaintText: complaint,
			Category:      category,
			Priority:      priority,
			Status:        ticket.StatusOpen,
			Valid:         true,
			CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		// Must not panic
		msg := buildMessage(tk)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		// Must round-trip
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestSend_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Send(context.Background(), criticalTicket())
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
