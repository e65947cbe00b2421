package ticketapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/resolve/internal/authmw"
	"github.com/linnemanlabs/resolve/internal/ticket"
	"github.com/linnemanlabs/resolve/internal/ticket/memstore"
	"github.com/linnemanlabs/resolve/internal/ticketapi"
	"github.com/linnemanlabs/resolve/internal/triage"
)

type stubClassifier struct {
	cls *triage.Classification
	err error
}

func (s stubClassifier) Classify(_ context.Context, _ string) (*triage.Classification, error) {
	return s.cls, s.err
}

func newServer(t *testing.T, cls *triage.Classification, token string) *httptest.Server {
	t.Helper()

	engine := triage.NewEngine(stubClassifier{cls: cls}, nil, triage.EngineHooks{})
	svc := ticket.NewService(memstore.New(), engine, nil, nil, nil)

	var auth func(http.Handler) http.Handler
	if token != "" {
		auth = authmw.BearerToken(token)
	}

	r := chi.NewRouter()
	ticketapi.New(nil, svc, auth).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func plumbingClassification() *triage.Classification {
	return &triage.Classification{
		Category: triage.Distribution{"Plumbing": 0.5, "other": 0.005},
		Priority: triage.Distribution{"High": 0.4, "other": 0.005},
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func submitTicket(t *testing.T, srv *httptest.Server, text string) map[string]any {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/v1/tickets", map[string]string{
		"name":           "Ada",
		"email":          "ada@campus.edu",
		"complaint_text": text,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", resp.StatusCode)
	}
	var body map[string]any
	decode(t, resp, &body)
	return body
}

func TestPredict(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	resp := postJSON(t, srv.URL+"/api/v1/predict", map[string]string{"text": "Water leak in block C"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var v triage.Verdict
	decode(t, resp, &v)
	if !v.Valid {
		t.Fatalf("verdict invalid, reason %q", v.Reason)
	}
	if v.Category != "Plumbing" || v.Priority != "High" {
		t.Errorf("labels = %s/%s, want Plumbing/High", v.Category, v.Priority)
	}
	if v.Reason != triage.ReasonKeywordMatch {
		t.Errorf("reason = %q, want keyword acceptance", v.Reason)
	}
}

func TestPredictBlankText(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	resp := postJSON(t, srv.URL+"/api/v1/predict", map[string]string{"text": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubmitAndStudentListing(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	body := submitTicket(t, srv, "Water leak in block C")
	tk, ok := body["ticket"].(map[string]any)
	if !ok {
		t.Fatalf("response missing ticket: %v", body)
	}
	if tk["status"] != "Open" {
		t.Errorf("status = %v, want Open", tk["status"])
	}

	resp, err := http.Get(srv.URL + "/api/v1/student/tickets?email=ada@campus.edu")
	if err != nil {
		t.Fatalf("GET student tickets: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var listing struct {
		Tickets []ticket.Ticket `json:"tickets"`
	}
	decode(t, resp, &listing)
	if len(listing.Tickets) != 1 {
		t.Errorf("tickets = %d, want 1", len(listing.Tickets))
	}

	// unknown student gets an empty list, not an error
	resp, err = http.Get(srv.URL + "/api/v1/student/tickets?email=nobody@campus.edu")
	if err != nil {
		t.Fatalf("GET unknown student: %v", err)
	}
	decode(t, resp, &listing)
	if len(listing.Tickets) != 0 {
		t.Errorf("unknown student tickets = %d, want 0", len(listing.Tickets))
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"blank complaint", map[string]string{"name": "Ada", "email": "ada@campus.edu", "complaint_text": "  "}},
		{"missing email", map[string]string{"name": "Ada", "complaint_text": "water leak"}},
	}

	for _, tt := range tests {
		resp := postJSON(t, srv.URL+"/api/v1/tickets", tt.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestStudentListingRequiresEmail(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	resp, err := http.Get(srv.URL + "/api/v1/student/tickets")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMaintainerRoutesRequireToken(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "secret-token")

	resp, err := http.Get(srv.URL + "/api/v1/maintainer/tickets")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/maintainer/tickets", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}

	// the student surface stays open
	resp = postJSON(t, srv.URL+"/api/v1/predict", map[string]string{"text": "water leak"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("predict status = %d, want 200 without token", resp.StatusCode)
	}
}

func TestAssignFlow(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	body := submitTicket(t, srv, "Water leak in block C")
	id := body["ticket"].(map[string]any)["id"].(string)

	resp := postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/assign", map[string]string{"email": "bob@campus.edu"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign status = %d, want 200", resp.StatusCode)
	}
	var tk ticket.Ticket
	decode(t, resp, &tk)
	if tk.Status != ticket.StatusInProgress {
		t.Errorf("status = %q, want In Progress", tk.Status)
	}
	if tk.AssignedTo == "" {
		t.Error("assigned_to is empty")
	}

	resp = postJSON(t, srv.URL+"/api/v1/maintainer/tickets/missing/assign", map[string]string{"email": "bob@campus.edu"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing ticket status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusFlow(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	body := submitTicket(t, srv, "Water leak in block C")
	id := body["ticket"].(map[string]any)["id"].(string)

	resp := postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/status", map[string]string{"status": "Resolved"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Resolved is terminal
	resp = postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/status", map[string]string{"status": "Open"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("reopen status = %d, want 422", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/status", map[string]string{"status": "Escalated"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown status = %d, want 422", resp.StatusCode)
	}
}

func TestLogWorkEndpoint(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	body := submitTicket(t, srv, "Water leak in block C")
	id := body["ticket"].(map[string]any)["id"].(string)

	// maintainer unknown until assignment
	resp := postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/log", map[string]string{
		"email": "bob@campus.edu", "action": "Inspected",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown maintainer status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/assign", map[string]string{"email": "bob@campus.edu"})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/maintainer/tickets/"+id+"/log", map[string]string{
		"email": "bob@campus.edu", "action": "Inspected", "notes": "leak under sink",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status = %d, want 201", resp.StatusCode)
	}
	var entry ticket.LogEntry
	decode(t, resp, &entry)
	if entry.Action != "Inspected" || entry.Notes != "leak under sink" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestChecklistFlow(t *testing.T) {
	t.Parallel()

	srv := newServer(t, plumbingClassification(), "")

	body := submitTicket(t, srv, "Water leak in block C")
	id := body["ticket"].(map[string]any)["id"].(string)

	resp, err := http.Get(srv.URL + "/api/v1/maintainer/tickets/" + id + "/checklist")
	if err != nil {
		t.Fatalf("GET checklist: %v", err)
	}
	var listing struct {
		Checklist []ticket.ChecklistItem `json:"checklist"`
	}
	decode(t, resp, &listing)
	if len(listing.Checklist) != 5 {
		t.Fatalf("checklist items = %d, want 5 for Plumbing", len(listing.Checklist))
	}
	if listing.Checklist[0].Task != "Water supply shut off" {
		t.Errorf("first task = %q, want template order", listing.Checklist[0].Task)
	}

	itemID := listing.Checklist[0].ID
	for i, want := range []bool{true, false} {
		resp = postJSON(t, srv.URL+"/api/v1/maintainer/checklist/"+itemID+"/toggle", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("toggle %d status = %d, want 200", i, resp.StatusCode)
		}
		var toggled struct {
			Completed bool `json:"completed"`
		}
		decode(t, resp, &toggled)
		if toggled.Completed != want {
			t.Errorf("toggle %d completed = %v, want %v", i, toggled.Completed, want)
		}
	}

	resp = postJSON(t, srv.URL+"/api/v1/maintainer/checklist/missing/toggle", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", resp.StatusCode)
	}
}

func TestClassifierFailureIsServerError(t *testing.T) {
	t.Parallel()

	engine := triage.NewEngine(stubClassifier{err: fmt.Errorf("model down")}, nil, triage.EngineHooks{})
	svc := ticket.NewService(memstore.New(), engine, nil, nil, nil)
	r := chi.NewRouter()
	ticketapi.New(nil, svc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv.URL+"/api/v1/predict", map[string]string{"text": "water leak"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
