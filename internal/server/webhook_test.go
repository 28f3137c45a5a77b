package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Isaias789672/chef-ai-recipes/internal/ai"
	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	"github.com/Isaias789672/chef-ai-recipes/internal/middleware"
	"github.com/Isaias789672/chef-ai-recipes/internal/models"
	"github.com/Isaias789672/chef-ai-recipes/internal/webhook"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testWebhookToken = "test-shared-secret"

type memUserStore struct {
	users     map[string]*models.User
	upsertErr error
	calls     int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) UpsertByEmail(_ context.Context, user *models.User) error {
	s.calls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	u := *user
	s.users[user.Email] = &u
	return nil
}

type memEventLogStore struct {
	entries []*models.WebhookLog
}

func (s *memEventLogStore) Append(_ context.Context, entry *models.WebhookLog) error {
	e := *entry
	s.entries = append(s.entries, &e)
	return nil
}

// newTestServer wires the real routes and middleware over in-memory
// stores; the database and redis are not needed for these tests.
func newTestServer(users webhook.UserStore, logs webhook.EventLogStore, aiCfg *config.AIConfig) *APIServer {
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	if aiCfg == nil {
		aiCfg = &config.AIConfig{Model: "test-model", TimeoutSeconds: 5, MaxTokens: 100}
	}
	cfg.AI = *aiCfg

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	srv := &APIServer{
		config:         cfg,
		router:         router,
		webhookService: webhook.NewService(users, logs, testWebhookToken),
		aiClient:       ai.NewClient(aiCfg),
	}
	srv.setupRoutes()
	return srv
}

func postWebhook(t *testing.T, srv *APIServer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/webhooks/kiwify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestKiwifyWebhook_OptionsPreflight(t *testing.T) {
	srv := newTestServer(newMemUserStore(), &memEventLogStore{}, nil)

	req := httptest.NewRequest("OPTIONS", "/api/v1/webhooks/kiwify", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("missing permissive CORS origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("unexpected CORS headers %q", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("preflight response must have no body, got %q", w.Body.String())
	}
}

func TestKiwifyWebhook_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(newMemUserStore(), &memEventLogStore{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/webhooks/kiwify", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestKiwifyWebhook_MalformedBody(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"email": "a@b.com", "evento":`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("parse failures respond 500, got %d", w.Code)
	}
	if users.calls != 0 || len(logs.entries) != 0 {
		t.Error("parse failures must not touch the stores")
	}
}

func TestKiwifyWebhook_InvalidToken(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"email": "a@b.com", "evento": "aprovada", "token": "wrong"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["error"] != "Forbidden - Invalid token" {
		t.Errorf("unexpected error body %v", body)
	}
	if users.calls != 0 || len(logs.entries) != 0 {
		t.Error("forbidden requests must not touch the stores")
	}
}

func TestKiwifyWebhook_MissingFields(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"evento": "aprovada", "produto": "Plano Master", "token": "test-shared-secret"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var body struct {
		Error    string `json:"error"`
		Received struct {
			Email   string `json:"email"`
			Evento  string `json:"evento"`
			Produto string `json:"produto"`
		} `json:"received"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Error != "Bad request - Missing email or evento" {
		t.Errorf("unexpected error %q", body.Error)
	}
	if body.Received.Evento != "aprovada" || body.Received.Produto != "Plano Master" {
		t.Errorf("expected extracted fields echoed back, got %+v", body.Received)
	}
	if users.calls != 0 || len(logs.entries) != 0 {
		t.Error("rejected requests must not touch the stores")
	}
}

func TestKiwifyWebhook_ApprovedMaster(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"email": "a@b.com", "evento": "assinatura aprovada", "produto": "Plano Master", "token": "test-shared-secret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Email         string `json:"email"`
			Plan          string `json:"plan"`
			Status        string `json:"status"`
			PlanoAplicado string `json:"plano_aplicado"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if !body.Success {
		t.Error("expected success=true")
	}
	if body.Data.Plan != "master" || body.Data.Status != "active" || body.Data.PlanoAplicado != "Master" {
		t.Errorf("unexpected data %+v", body.Data)
	}

	if users.users["a@b.com"] == nil {
		t.Error("user record not upserted")
	}
	if len(logs.entries) != 1 {
		t.Errorf("expected 1 log entry, got %d", len(logs.entries))
	}
}

func TestKiwifyWebhook_ProviderNativePayload(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{
		"webhook_event_type": "subscription_renewed",
		"signature": "test-shared-secret",
		"Customer": {"email": "a@b.com"},
		"Product": {"product_name": "Plano Normal"}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	user := users.users["a@b.com"]
	if user == nil {
		t.Fatal("user record not upserted")
	}
	if user.Plan != models.PlanNormal || user.Status != models.StatusActive {
		t.Errorf("expected normal/active, got %s/%s", user.Plan, user.Status)
	}
}

func TestKiwifyWebhook_PendingPayment(t *testing.T) {
	users := newMemUserStore()
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"email": "a@b.com", "evento": "pix_created", "token": "test-shared-secret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if users.calls != 0 {
		t.Error("pending payment must not upsert")
	}
	if len(logs.entries) != 1 {
		t.Errorf("pending payment must still be logged, got %d entries", len(logs.entries))
	}
}

func TestKiwifyWebhook_UpsertFailure(t *testing.T) {
	users := newMemUserStore()
	users.upsertErr = errors.New("connection refused")
	logs := &memEventLogStore{}
	srv := newTestServer(users, logs, nil)

	w := postWebhook(t, srv, `{"email": "a@b.com", "evento": "aprovada", "token": "test-shared-secret"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["error"] != "Failed to update user" {
		t.Errorf("unexpected error body %v", body)
	}
	if len(logs.entries) != 0 {
		t.Error("log entry must not be written after an upsert failure")
	}
}
