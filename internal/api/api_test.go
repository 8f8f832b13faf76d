package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"OrandaBot/internal/config"
	"OrandaBot/internal/db"
	"OrandaBot/internal/models"
)

const (
	testToken = "123:secret"
	adminID   = int64(1)
)

func signedInitData(userID int64) string {
	q := url.Values{}
	q.Set("auth_date", "1700000000")
	q.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"Test"}`, userID))
	q.Set("hash", signInitData(q, testToken))
	return q.Encode()
}

func newTestRouter(t *testing.T) (http.Handler, *db.Store) {
	t.Helper()
	store, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	cfg := &config.Config{
		AdminUserIDs: []int64{adminID},
		Location:     time.UTC,
		BotUsername:  "oranda_bot",
	}
	return NewRouter(ApiDependencies{Config: cfg, Store: store, SecretKey: testToken}), store
}

func do(t *testing.T, h http.Handler, path string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != 0 {
		req.Header.Set("X-Telegram-Auth", signedInitData(userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) jsonResponse {
	t.Helper()
	resp := jsonResponse{Data: data}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func seedOffer(t *testing.T, store *db.Store) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := store.CreateOffer(ctx, models.Actor{ID: 5, Name: "@bob"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetField(ctx, id, models.FieldCity, models.NewNullString("Bratislava")); err != nil {
		t.Fatal(err)
	}
	if err := store.SetGroupPost(ctx, id, models.GroupPost{ChatID: -1001234, MessageID: 8}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordStatus(ctx, id, models.StatusClosed, models.Actor{ID: 5, Name: "@bob"}); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, "/healthz", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id header")
	}
}

func TestAuth(t *testing.T) {
	h, _ := newTestRouter(t)
	if rec := do(t, h, "/api/offers", 0); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no auth code = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
	req.Header.Set("X-Telegram-Auth", strings.Replace(signedInitData(adminID), "Test", "Evil", 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered code = %d", rec.Code)
	}

	if rec := do(t, h, "/api/offers", 99); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin code = %d", rec.Code)
	}
}

func TestOffersEndpoints(t *testing.T) {
	h, store := newTestRouter(t)
	id := seedOffer(t, store)

	var offers []models.Offer
	rec := do(t, h, "/api/offers", adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("list code = %d", rec.Code)
	}
	if resp := decode(t, rec, &offers); resp.Status != "success" || len(offers) != 1 {
		t.Fatalf("list = %+v %+v", resp, offers)
	}

	var offer models.Offer
	rec = do(t, h, fmt.Sprintf("/api/offers/%d", id), adminID)
	decode(t, rec, &offer)
	if offer.City.ValueOr("") != "Bratislava" || offer.Status != models.StatusClosed {
		t.Fatalf("offer = %+v", offer)
	}

	var events []models.StatusEvent
	rec = do(t, h, fmt.Sprintf("/api/offers/%d/events", id), adminID)
	decode(t, rec, &events)
	if len(events) != 1 || events[0].Status != models.StatusClosed {
		t.Fatalf("events = %+v", events)
	}

	if rec := do(t, h, "/api/offers/999", adminID); rec.Code != http.StatusNotFound {
		t.Fatalf("missing code = %d", rec.Code)
	}
	if rec := do(t, h, "/api/offers/abc", adminID); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id code = %d", rec.Code)
	}
}

func TestQREndpoint(t *testing.T) {
	h, store := newTestRouter(t)
	id := seedOffer(t, store)
	rec := do(t, h, fmt.Sprintf("/api/offers/%d/qr.png", id), adminID)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr code = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected PNG body")
	}
}

func TestStatsEndpoint(t *testing.T) {
	h, store := newTestRouter(t)
	seedOffer(t, store)

	var report statsResponse
	rec := do(t, h, "/api/stats/day", adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats code = %d", rec.Code)
	}
	decode(t, rec, &report)
	if report.Totals[models.StatusClosed] != 1 || report.Totals[models.StatusActive] != 0 {
		t.Fatalf("totals = %+v", report.Totals)
	}
	if len(report.Actors) != 1 || report.Actors[0] != "@bob" {
		t.Fatalf("actors = %+v", report.Actors)
	}

	if rec := do(t, h, "/api/stats/week", adminID); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad period code = %d", rec.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	h, store := newTestRouter(t)
	seedOffer(t, store)

	rec := do(t, h, "/api/export.csv", adminID)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv code = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "Bratislava") {
		t.Fatalf("csv body = %q", rec.Body.String())
	}

	rec = do(t, h, "/api/export.xlsx", adminID)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx code = %d", rec.Code)
	}
}
