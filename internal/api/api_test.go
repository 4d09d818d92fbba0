package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/app/progression"
	"github.com/fanpulse/fanpulse/internal/health"
	"github.com/fanpulse/fanpulse/internal/infra/memstore"
)

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	store := memstore.New()
	e, err := progression.NewEngine(store, progression.Options{
		Random: progression.NewSeededSource(7),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	e.SetLedger(store)
	e.AddSink(store)
	return NewServer(e, store), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

type viewBody struct {
	UserID     string `json:"user_id"`
	Points     int64  `json:"points"`
	Spins      int    `json:"spins"`
	Completion int    `json:"completion"`
}

type resultBody struct {
	View   viewBody `json:"view"`
	Events []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"events"`
}

// ─── Health / Version ───────────────────────────────────────────────────────

func TestAPI_Liveness(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPI_Version(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "GET", "/api/version", "")

	var body map[string]string
	decode(t, w, &body)
	if body["version"] != Version {
		t.Errorf("version = %q, want %q", body["version"], Version)
	}
}

func TestAPI_HealthChecks(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.SetHealth(health.NewChecker(nil, t.TempDir(), srv.engine))

	w := do(t, srv.Handler(), "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	var body struct {
		Healthy bool            `json:"healthy"`
		Checks  []health.Status `json:"checks"`
	}
	decode(t, w, &body)
	if !body.Healthy || len(body.Checks) != 3 {
		t.Errorf("expected 3 healthy checks, got %+v", body)
	}
}

func TestAPI_HealthUnhealthy(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.SetHealth(health.NewChecker(nil, "", nil))

	w := do(t, srv.Handler(), "GET", "/api/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// ─── Catalogs ───────────────────────────────────────────────────────────────

func TestAPI_Catalogs(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	var tiers struct {
		Tiers []struct {
			Name string `json:"name"`
		} `json:"tiers"`
	}
	decode(t, do(t, h, "GET", "/api/tiers", ""), &tiers)
	if len(tiers.Tiers) != srv.engine.Resolver().Table().Len() {
		t.Errorf("tiers = %d, want %d", len(tiers.Tiers), srv.engine.Resolver().Table().Len())
	}

	var wheel struct {
		Segments     []json.RawMessage `json:"segments"`
		SegmentWidth float64           `json:"segment_width"`
	}
	decode(t, do(t, h, "GET", "/api/wheel", ""), &wheel)
	if len(wheel.Segments) != 20 || wheel.SegmentWidth != 18 {
		t.Errorf("wheel = %d segments at %v°, want 20 at 18°", len(wheel.Segments), wheel.SegmentWidth)
	}

	var missions struct {
		Missions []json.RawMessage `json:"missions"`
	}
	decode(t, do(t, h, "GET", "/api/missions", ""), &missions)
	if len(missions.Missions) == 0 {
		t.Error("expected a non-empty mission catalog")
	}

	w := do(t, h, "GET", "/api/profile-items", "")
	if w.Code != http.StatusOK {
		t.Errorf("profile-items status = %d, want %d", w.Code, http.StatusOK)
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestAPI_OnboardGeneratesID(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "POST", "/api/users", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var res resultBody
	decode(t, w, &res)
	if res.View.UserID == "" {
		t.Error("expected a generated user id")
	}
}

func TestAPI_OnboardDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAPI_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/users/ghost"},
		{"POST", "/api/users/ghost/spin"},
		{"GET", "/api/users/ghost/history"},
	} {
		w := do(t, h, tc.method, tc.path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want %d", tc.method, tc.path, w.Code, http.StatusNotFound)
		}
	}
}

func TestAPI_PointsAndView(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users/fan/points", `{"delta":120.9,"reason":"quiz"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var vm viewBody
	decode(t, do(t, h, "GET", "/api/users/fan", ""), &vm)
	if vm.Points != 120 {
		t.Errorf("points = %d, want 120", vm.Points)
	}
}

func TestAPI_NegativePointsClamped(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users/fan/points", `{"delta":-500}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var res resultBody
	decode(t, w, &res)
	if res.View.Points != 0 {
		t.Errorf("points = %d, want 0", res.View.Points)
	}
}

func TestAPI_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users/fan/points", `{"delta":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPI_SocialConnect(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, "POST", "/api/users/fan/socials/twitter", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var first resultBody
	decode(t, w, &first)

	var again resultBody
	decode(t, do(t, h, "POST", "/api/users/fan/socials/x", ""), &again)
	if again.View.Completion != first.View.Completion || again.View.Points != first.View.Points {
		t.Errorf("repeat connect changed state: %+v -> %+v", first.View, again.View)
	}

	w = do(t, h, "POST", "/api/users/fan/socials/myspace", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown platform status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPI_Authenticate(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, "POST", "/api/users/fan/auth", `{"provider":"google","verified":false,"name":"Fan"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unverified status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = do(t, h, "POST", "/api/users/fan/auth", `{"provider":"google","verified":true,"email":"fan@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var res resultBody
	decode(t, w, &res)
	if res.View.Completion != 30 {
		t.Errorf("completion = %d, want 30", res.View.Completion)
	}
}

func TestAPI_TeamRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), "POST", "/api/users/fan/team", `{"team":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPI_UnknownMission(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users/fan/missions/nope", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// ─── Spin & Events ──────────────────────────────────────────────────────────

func TestAPI_SpinWithoutSpins(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)

	w := do(t, h, "POST", "/api/users/fan/spin", "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAPI_SpinAndEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)
	do(t, h, "POST", "/api/users/fan/fuel", `{"fuel":150}`)

	w := do(t, h, "POST", "/api/users/fan/spin", "")
	if w.Code != http.StatusOK {
		t.Fatalf("spin status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	var spin struct {
		resultBody
		Landing struct {
			Index int `json:"index"`
		} `json:"landing"`
	}
	decode(t, w, &spin)
	if spin.View.Spins != 0 {
		t.Errorf("spins left = %d, want 0", spin.View.Spins)
	}

	var pending struct {
		Events []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"events"`
	}
	decode(t, do(t, h, "GET", "/api/users/fan/events", ""), &pending)
	var prizeID string
	for _, ev := range pending.Events {
		if ev.Type == "prize_won" {
			prizeID = ev.ID
		}
	}
	if prizeID == "" {
		t.Fatalf("expected a pending prize_won event, got %+v", pending.Events)
	}

	w = do(t, h, "POST", "/api/users/rival/events/"+prizeID+"/shown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("other user's event status = %d, want %d", w.Code, http.StatusNotFound)
	}
	w = do(t, h, "POST", "/api/users/fan/events/"+prizeID+"/shown", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("mark shown status = %d, want %d", w.Code, http.StatusNoContent)
	}
	w = do(t, h, "POST", "/api/users/fan/events/missing/shown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown event status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPI_SettleAndHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)
	do(t, h, "POST", "/api/users/fan/points", `{"delta":40,"reason":"quiz"}`)
	do(t, h, "POST", "/api/users/fan/fuel", `{"fuel":100}`)

	w := do(t, h, "POST", "/api/users/fan/settle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("settle status = %d, want %d", w.Code, http.StatusOK)
	}

	var history struct {
		Entries []struct {
			Reason string `json:"reason"`
		} `json:"entries"`
	}
	decode(t, do(t, h, "GET", "/api/users/fan/history?limit=10", ""), &history)
	if len(history.Entries) == 0 || history.Entries[len(history.Entries)-1].Reason != "quiz" {
		t.Errorf("expected history ending with the quiz entry, got %+v", history.Entries)
	}
}

func TestAPI_ShieldAndReset(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()
	do(t, h, "POST", "/api/users", `{"user_id":"fan"}`)
	do(t, h, "POST", "/api/users/fan/points", `{"delta":300}`)

	if w := do(t, h, "POST", "/api/users/fan/shields", ""); w.Code != http.StatusOK {
		t.Errorf("shield status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := do(t, h, "POST", "/api/users/fan/reset", ""); w.Code != http.StatusOK {
		t.Errorf("reset status = %d, want %d", w.Code, http.StatusOK)
	}
	u, err := store.Load(context.Background(), "fan")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if u.Points != 0 || u.Shields.Available != 1 {
		t.Errorf("after reset: points %d shields %d, want 0 and 1", u.Points, u.Shields.Available)
	}
}

// ─── Middleware ─────────────────────────────────────────────────────────────

func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	if w := do(t, srv.Handler(), "GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("metrics disabled status = %d, want %d", w.Code, http.StatusNotFound)
	}

	srv.EnableMetrics()
	h := srv.Handler()
	do(t, h, "GET", "/api/tiers", "")
	w := do(t, h, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "fanpulse_api_requests_total") {
		t.Error("expected fanpulse_api_requests_total in /metrics output")
	}
}

func TestAPI_CORS(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.SetCORSOrigins([]string{"https://fans.example.com"})
	h := srv.Handler()

	req := httptest.NewRequest("OPTIONS", "/api/tiers", nil)
	req.Header.Set("Origin", "https://fans.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://fans.example.com" {
		t.Errorf("allow-origin = %q, want the request origin", got)
	}

	req = httptest.NewRequest("GET", "/api/tiers", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty for unknown origin", got)
	}
}
