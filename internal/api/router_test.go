package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walkin-queue-service/internal/adapters/repositories"
	"walkin-queue-service/internal/api/dto"
	"walkin-queue-service/internal/domain"
)

var routerNow = time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := repositories.NewMemoryVenueStore(domain.DefaultCourses(), domain.DefaultCapacity)
	srv := httptest.NewServer(NewRouter(store, func() time.Time { return routerNow }))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("%s %s: missing X-Request-ID header", method, path)
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}

	return resp.StatusCode
}

func TestRouterQueueFlow(t *testing.T) {
	srv := newTestServer(t)

	if code := do(t, srv, http.MethodPut, "/settings", `{"max_capacity":4}`, nil); code != http.StatusOK {
		t.Fatalf("PUT /settings = %d, want 200", code)
	}

	var first, second dto.PartyResponse
	if code := do(t, srv, http.MethodPost, "/queue", `{"size":4,"note":"birthday"}`, &first); code != http.StatusCreated {
		t.Fatalf("POST /queue = %d, want 201", code)
	}
	if code := do(t, srv, http.MethodPost, "/queue", `{"size":2}`, &second); code != http.StatusCreated {
		t.Fatalf("POST /queue = %d, want 201", code)
	}
	if !strings.HasPrefix(first.ID, "q_") || first.Note != "birthday" {
		t.Fatalf("created party = %+v", first)
	}

	var edited dto.PartyResponse
	if code := do(t, srv, http.MethodPatch, "/queue/"+first.ID, `{"note":"birthday, cake"}`, &edited); code != http.StatusOK {
		t.Fatalf("PATCH /queue/{id} = %d, want 200", code)
	}
	if edited.Size != 4 || edited.Note != "birthday, cake" {
		t.Fatalf("edited party = %+v", edited)
	}

	// Default courses are 30 and 60 minutes: assumed stay 45 + 7.
	var list dto.ListQueueResponse
	if code := do(t, srv, http.MethodGet, "/queue", "", &list); code != http.StatusOK {
		t.Fatalf("GET /queue = %d, want 200", code)
	}
	if list.Capacity != 4 || len(list.Parties) != 2 {
		t.Fatalf("queue = %+v", list)
	}
	assertWait(t, list.Parties[0], 0)
	assertWait(t, list.Parties[1], 52)

	var preview dto.PreviewResponse
	if code := do(t, srv, http.MethodGet, "/estimates/preview?size=1", "", &preview); code != http.StatusOK {
		t.Fatalf("GET /estimates/preview = %d, want 200", code)
	}
	if preview.WaitMinutes != 52 || preview.Approximate {
		t.Fatalf("preview = %+v, want wait 52", preview)
	}

	var occupant dto.OccupantResponse
	if code := do(t, srv, http.MethodPost, "/queue/"+first.ID+"/admit", `{"course_id":"c30"}`, &occupant); code != http.StatusCreated {
		t.Fatalf("POST admit = %d, want 201", code)
	}
	if !occupant.ExitAt.Equal(routerNow.Add(37 * time.Minute)) {
		t.Fatalf("exit_at = %v, want %v", occupant.ExitAt, routerNow.Add(37*time.Minute))
	}

	// The admitted party's real exit replaces its assumed stay.
	if code := do(t, srv, http.MethodGet, "/queue", "", &list); code != http.StatusOK {
		t.Fatalf("GET /queue = %d, want 200", code)
	}
	if len(list.Parties) != 1 {
		t.Fatalf("queue after admit = %+v", list.Parties)
	}
	assertWait(t, list.Parties[0], 37)

	var inside dto.ListInsideResponse
	if code := do(t, srv, http.MethodGet, "/inside", "", &inside); code != http.StatusOK {
		t.Fatalf("GET /inside = %d, want 200", code)
	}
	if inside.Headcount != 4 || len(inside.Occupants) != 1 {
		t.Fatalf("inside = %+v", inside)
	}

	var entry dto.HistoryEntryResponse
	if code := do(t, srv, http.MethodPost, "/inside/"+occupant.ID+"/checkout", "", &entry); code != http.StatusOK {
		t.Fatalf("POST checkout = %d, want 200", code)
	}
	if entry.EnterAt == nil || !entry.ExitAt.Equal(routerNow) {
		t.Fatalf("history entry = %+v", entry)
	}

	var history dto.ListHistoryResponse
	if code := do(t, srv, http.MethodGet, "/history", "", &history); code != http.StatusOK {
		t.Fatalf("GET /history = %d, want 200", code)
	}
	if len(history.Entries) != 1 {
		t.Fatalf("history = %+v", history)
	}

	if code := do(t, srv, http.MethodDelete, "/history/"+entry.ID, "", nil); code != http.StatusNoContent {
		t.Fatalf("DELETE history = %d, want 204", code)
	}
	if code := do(t, srv, http.MethodDelete, "/queue/"+second.ID, "", nil); code != http.StatusNoContent {
		t.Fatalf("DELETE queue = %d, want 204", code)
	}
}

func assertWait(t *testing.T, p dto.PartyResponse, want int) {
	t.Helper()

	if p.WaitMinutes == nil {
		t.Fatalf("party %s has no wait estimate", p.ID)
	}
	if *p.WaitMinutes != want {
		t.Fatalf("party %s wait = %d, want %d", p.ID, *p.WaitMinutes, want)
	}
	if p.EstimatedEntryAt == nil || !p.EstimatedEntryAt.Equal(routerNow.Add(time.Duration(want)*time.Minute)) {
		t.Fatalf("party %s estimated entry = %v", p.ID, p.EstimatedEntryAt)
	}
}

func TestRouterErrors(t *testing.T) {
	srv := newTestServer(t)

	var party dto.PartyResponse
	if code := do(t, srv, http.MethodPost, "/queue", `{"size":2}`, &party); code != http.StatusCreated {
		t.Fatalf("POST /queue = %d, want 201", code)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"zero size", http.MethodPost, "/queue", `{"size":0}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/queue", `{"size":2,"vip":true}`, http.StatusBadRequest},
		{"two objects", http.MethodPost, "/queue", `{"size":2}{"size":3}`, http.StatusBadRequest},
		{"queue method", http.MethodPatch, "/queue", "", http.StatusMethodNotAllowed},
		{"update zero size", http.MethodPatch, "/queue/" + party.ID, `{"size":0}`, http.StatusBadRequest},
		{"update nothing", http.MethodPatch, "/queue/" + party.ID, `{}`, http.StatusBadRequest},
		{"update missing", http.MethodPatch, "/queue/q_missing", `{"size":3}`, http.StatusNotFound},
		{"party method", http.MethodPut, "/queue/" + party.ID, "", http.StatusMethodNotAllowed},
		{"leave missing", http.MethodDelete, "/queue/q_missing", "", http.StatusNotFound},
		{"admit missing party", http.MethodPost, "/queue/q_missing/admit", `{"course_id":"c30"}`, http.StatusNotFound},
		{"admit unknown course", http.MethodPost, "/queue/" + party.ID + "/admit", `{"course_id":"c999"}`, http.StatusNotFound},
		{"admit without course", http.MethodPost, "/queue/" + party.ID + "/admit", `{}`, http.StatusBadRequest},
		{"preview bad size", http.MethodGet, "/estimates/preview?size=abc", "", http.StatusBadRequest},
		{"preview zero size", http.MethodGet, "/estimates/preview?size=0", "", http.StatusBadRequest},
		{"checkout missing", http.MethodPost, "/inside/in_missing/checkout", "", http.StatusNotFound},
		{"zero capacity", http.MethodPut, "/settings", `{"max_capacity":0}`, http.StatusBadRequest},
		{"health method", http.MethodPost, "/health", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, srv, tt.method, tt.path, tt.body, nil); code != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, code, tt.want)
			}
		})
	}
}
