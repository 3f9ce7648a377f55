// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kardolabs/estatesync/internal/auth"
	"github.com/kardolabs/estatesync/internal/authz"
	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/models"
	"github.com/kardolabs/estatesync/internal/quota"
	"github.com/kardolabs/estatesync/internal/stream"
)

//nolint:gochecknoinits // quiet logger for the whole package's tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

const testSecret = "0123456789abcdef0123456789abcdef"

// testServer bundles the router with its collaborators for handler
// tests. Rate limiting is disabled by default; tests that exercise a
// bucket build their own config.
type testServer struct {
	srv      *httptest.Server
	rt       *Router
	db       *database.DB
	hub      *stream.Hub
	verifier *auth.Verifier
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	cfg.RateLimit.Disabled = true
	for _, fn := range mutate {
		fn(cfg)
	}

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hub := stream.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	verifier, err := auth.NewVerifier(&cfg.Auth)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	authzSvc := authz.NewService(enforcer)
	t.Cleanup(authzSvc.Close)

	rt := NewRouter(cfg, db, hub, quota.NewLedger(db), verifier, authzSvc)
	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, rt: rt, db: db, hub: hub, verifier: verifier}
}

// token mints a bearer token for an actor with the given role.
func (ts *testServer) token(t *testing.T, accountID uuid.UUID, role models.Role, languages ...string) string {
	t.Helper()

	signed, err := ts.verifier.Sign(&auth.Actor{
		AccountID: accountID,
		Role:      role,
		Languages: languages,
	}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return signed
}

// do issues a request against the test server and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, *models.APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if resp.StatusCode == http.StatusNotModified || resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, &envelope
}

// decodeData re-marshals the envelope's data field into dst.
func decodeData(t *testing.T, envelope *models.APIResponse, dst interface{}) {
	t.Helper()

	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

// seedAccount inserts an account and returns its ID.
func (ts *testServer) seedAccount(t *testing.T, role models.Role, languages ...string) uuid.UUID {
	t.Helper()

	account := &models.Account{
		ID:        uuid.New(),
		Name:      "test account",
		Email:     "test@example.com",
		Role:      role,
		Languages: languages,
	}
	if err := ts.db.UpsertAccount(context.Background(), account); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	return account.ID
}

// seedGrant creates a wave and a grant on it for the account.
func (ts *testServer) seedGrant(t *testing.T, accountID uuid.UUID, maxProperties int) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	wave := &models.Wave{Name: "wave-" + uuid.NewString()}
	if err := ts.db.CreateWave(ctx, wave); err != nil {
		t.Fatalf("CreateWave() error = %v", err)
	}
	err := ts.db.GrantWavePermission(ctx, &models.WavePermission{
		AccountID:     accountID,
		WaveID:        wave.ID,
		MaxProperties: maxProperties,
	})
	if err != nil {
		t.Fatalf("GrantWavePermission() error = %v", err)
	}
	return wave.ID
}

// validListingBody returns a create payload accepted by validation.
func validListingBody(waveID uuid.UUID) map[string]interface{} {
	body := map[string]interface{}{
		"title":       "Stone house with garden",
		"description": "Two floors, recently renovated",
		"type":        "house",
		"listingType": "sale",
		"price":       "125000.50",
		"currency":    "USD",
		"area":        180,
		"city":        "Erbil",
		"country":     "Iraq",
		"language":    "en",
	}
	if waveID != uuid.Nil {
		body["waveId"] = waveID.String()
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, envelope := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var status HealthStatus
	decodeData(t, envelope, &status)
	if status.Status != "ok" || status.Database != "up" {
		t.Errorf("health = %+v, want ok/up", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.srv.Client().Get(ts.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestUnauthenticatedWriteRejected(t *testing.T) {
	ts := newTestServer(t)

	resp, envelope := ts.do(t, http.MethodPost, "/api/v1/properties", "", validListingBody(uuid.Nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeUnauthenticated {
		t.Errorf("error = %+v, want code %s", envelope.Error, models.ErrCodeUnauthenticated)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	resp, envelope := ts.do(t, http.MethodGet, "/api/v1/favorites", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeUnauthenticated {
		t.Errorf("error = %+v, want code %s", envelope.Error, models.ErrCodeUnauthenticated)
	}
}

func TestRateLimitBreach(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Disabled = false
		cfg.RateLimit.Search = config.Bucket{Requests: 2, Window: time.Minute}
	})

	var last *http.Response
	var envelope *models.APIResponse
	for i := 0; i < 3; i++ {
		last, envelope = ts.do(t, http.MethodGet, "/api/v1/properties", "", nil)
	}

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want %d", last.StatusCode, http.StatusTooManyRequests)
	}
	if envelope.Error == nil || envelope.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("error = %+v, want code %s", envelope.Error, models.ErrCodeRateLimited)
	}
	if last.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header missing on 429")
	}
}

func TestRateLimitKeyedByAccount(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Disabled = false
		cfg.RateLimit.Search = config.Bucket{Requests: 2, Window: time.Minute}
	})

	// Exhaust the anonymous (IP-keyed) bucket.
	for i := 0; i < 3; i++ {
		ts.do(t, http.MethodGet, "/api/v1/properties", "", nil)
	}

	// An authenticated client on the same IP has its own bucket.
	token := ts.token(t, uuid.New(), models.RoleCustomer, "en")
	resp, _ := ts.do(t, http.MethodGet, "/api/v1/properties", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated request status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/v1/health", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("X-Request-ID", "upstream-id-1")

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "upstream-id-1" {
		t.Errorf("X-Request-ID = %q, want upstream-id-1", got)
	}
}

func TestAuthDisabledGrantsSuperAdmin(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.Disabled = true
	})

	resp, envelope := ts.do(t, http.MethodGet, "/api/v1/waves", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d: %+v", resp.StatusCode, http.StatusOK, envelope.Error)
	}
}

// priceOf parses the string-serialized decimal in a response payload.
func priceOf(t *testing.T, raw string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse price %q: %v", raw, err)
	}
	return d
}
