package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CareerPortal_ResultsProject/internal/auth"
	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/llm"
	"CareerPortal_ResultsProject/internal/middleware"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/payment"
	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/service"
	"CareerPortal_ResultsProject/internal/settings"
	"CareerPortal_ResultsProject/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminKey = "operator-secret"

type stubChat struct{ err error }

func (s stubChat) Complete(context.Context, llm.ChatRequest) (string, error) {
	return "Generated advice", s.err
}

type stubImages struct{}

func (stubImages) Generate(context.Context, string) (llm.ImageResult, error) {
	return llm.ImageResult{URL: "https://img/x.png", Variants: []string{"https://img/x.png"}}, nil
}

type stubProvider struct{}

func (stubProvider) CreateIntent(_ context.Context, amount int64, currency string, md map[string]string) (payment.Intent, error) {
	return payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Amount: amount, Currency: currency, Metadata: md}, nil
}

func (stubProvider) GetIntent(context.Context, string) (payment.Intent, error) {
	return payment.Intent{ID: "pi_test", Status: "succeeded"}, nil
}

func (stubProvider) ParseWebhook([]byte, string) (payment.Event, error) {
	return payment.Event{}, payment.ErrInvalidSignature
}

type testServer struct {
	router  *gin.Engine
	issuer  *auth.TokenIssuer
	runtime *settings.Runtime
	record  string
}

func newTestServer(t *testing.T, balance int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	profiles := db.Profiles()
	profile := &models.UserProfile{
		Code:               "ABC123",
		PersonalityFactors: "G+6 S+4",
		Fields:             map[string]string{models.FieldName: "Ann"},
		TokenBalance:       balance,
	}
	require.NoError(t, profiles.Create(context.Background(), profile))

	catalog, err := prompt.DefaultCatalog()
	require.NoError(t, err)

	runtime := settings.NewRuntime(false)
	l := ledger.New(profiles, nil, runtime, zap.NewNop())
	portal := service.NewPortal(service.Deps{
		Profiles:       profiles,
		Ledger:         l,
		History:        db,
		Catalog:        catalog,
		Chat:           stubChat{},
		Images:         stubImages{},
		PlaceholderURL: "/placeholder.png",
		Log:            zap.NewNop(),
	})
	payments := payment.NewService(stubProvider{}, db, l, "chf", zap.NewNop())
	issuer := auth.NewTokenIssuer("secret", time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)

	router := gin.New()
	New(portal, payments, runtime, issuer, zap.NewNop()).Register(router, Guards{
		Session:     middleware.AuthMiddleware(issuer),
		Admin:       middleware.AdminKeyMiddleware(string(hash), zap.NewNop()),
		VerifyLimit: middleware.RateLimitByIP(time.Millisecond, 100),
	})
	return &testServer{router: router, issuer: issuer, runtime: runtime, record: profile.ID}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, _, err := s.issuer.Issue(s.record, "ABC123")
	require.NoError(t, err)
	return token
}

type call struct {
	method, path string
	body         any
	token        string
	header       map[string]string
}

func (s *testServer) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestVerifyCode(t *testing.T) {
	s := newTestServer(t, 50)

	w, out := s.do(t, call{method: http.MethodPost, path: "/api/verify", body: gin.H{"code": "ABC123"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["token"])
	profile := out["profile"].(map[string]any)
	assert.Equal(t, "Ann", profile["name"])
	assert.EqualValues(t, 50, profile["tokenBalance"])

	w, out = s.do(t, call{method: http.MethodPost, path: "/api/verify", body: gin.H{"code": "NOPE"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, out["success"])

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/verify", body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the issued token opens the session
	w, _ = s.do(t, call{method: http.MethodGet, path: "/api/profile", token: s.token(t)})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, call{method: http.MethodGet, path: "/api/profile"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateFeatureStatuses(t *testing.T) {
	s := newTestServer(t, 25)
	token := s.token(t)

	w, out := s.do(t, call{method: http.MethodPost, path: "/api/features/work_environment", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	result := out["result"].(map[string]any)
	assert.Equal(t, "Generated advice", result["text"])
	assert.EqualValues(t, 5, result["balance"])
	assert.Equal(t, "https://img/x.png", result["image"].(map[string]any)["url"])

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/features/horoscope", token: token})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = s.do(t, call{method: http.MethodPost, path: "/api/features/strengths", token: token})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, out["error"], "insufficient")

	w, out = s.do(t, call{method: http.MethodGet, path: "/api/history", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["history"], 1)

	w, _ = s.do(t, call{method: http.MethodGet, path: "/api/history?limit=0", token: token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokensAndAdmin(t *testing.T) {
	s := newTestServer(t, 20)
	token := s.token(t)
	admin := map[string]string{"X-Admin-Key": adminKey}

	w, out := s.do(t, call{method: http.MethodGet, path: "/api/tokens", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 20, out["balance"])

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/tokens/deduct", token: token, body: gin.H{"amount": 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/tokens/deduct", token: token, body: gin.H{"amount": 30}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, call{method: http.MethodPut, path: "/admin/settings", body: gin.H{"testMode": true}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out = s.do(t, call{method: http.MethodPut, path: "/admin/settings", body: gin.H{"testMode": true}, header: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["settings"].(map[string]any)["testMode"])
	assert.True(t, s.runtime.TestMode())

	w, out = s.do(t, call{method: http.MethodPost, path: "/api/tokens/deduct", token: token, body: gin.H{"amount": 30}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["testMode"])
	assert.EqualValues(t, 20, out["balance"])

	w, out = s.do(t, call{method: http.MethodPost, path: "/admin/tokens/add", body: gin.H{"code": "ABC123", "amount": 80}, header: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 100, out["balance"])

	w, _ = s.do(t, call{method: http.MethodPost, path: "/admin/tokens/add", body: gin.H{"code": "NOPE", "amount": 5}, header: admin})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = s.do(t, call{method: http.MethodGet, path: "/admin/settings", header: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["settings"].(map[string]any)["testMode"])
}

func TestPayments(t *testing.T) {
	s := newTestServer(t, 0)
	token := s.token(t)

	w, out := s.do(t, call{method: http.MethodGet, path: "/api/payments/packages"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["packages"], 3)

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/payments/intent", token: token, body: gin.H{"package": "gold"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = s.do(t, call{method: http.MethodPost, path: "/api/payments/intent", token: token, body: gin.H{"package": "starter"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pi_test_secret", out["intent"].(map[string]any)["clientSecret"])

	w, out = s.do(t, call{method: http.MethodPost, path: "/api/payments/confirm", token: token, body: gin.H{"intentId": "pi_test"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["payment"].(map[string]any)["credited"])

	w, out = s.do(t, call{method: http.MethodGet, path: "/api/tokens", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 100, out["balance"])

	w, _ = s.do(t, call{method: http.MethodPost, path: "/webhooks/stripe", body: gin.H{"type": "payment_intent.succeeded"},
		header: map[string]string{"Stripe-Signature": "t=1,v1=bad"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t, 0)
	token := s.token(t)

	w, out := s.do(t, call{method: http.MethodPost, path: "/api/profile/suggestions", token: token,
		body: gin.H{"category": "skills", "content": "Mentoring"}})
	require.Equal(t, http.StatusOK, w.Code)
	id := out["entry"].(map[string]any)["id"].(string)

	w, _ = s.do(t, call{method: http.MethodDelete, path: "/api/profile/suggestions/skills/" + id, token: token})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, call{method: http.MethodDelete, path: "/api/profile/suggestions/skills/" + id, token: token})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, call{method: http.MethodPost, path: "/api/profile/suggestions", token: token, body: gin.H{"category": "skills"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, statusFor(auth.ErrInvalidToken))
	assert.Equal(t, http.StatusForbidden, statusFor(ledger.ErrInsufficientBalance))
	assert.Equal(t, http.StatusNotFound, statusFor(storage.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("upstream said no")))
}

func TestGenerateStream(t *testing.T) {
	s := newTestServer(t, 50)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/generate?feature=future_vision&token=" + s.token(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var types []string
	for {
		var e service.Event
		if err := conn.ReadJSON(&e); err != nil {
			break
		}
		types = append(types, e.Type)
		if e.Type == service.EventDone {
			require.NotNil(t, e.Result)
			assert.EqualValues(t, 25, e.Result.Balance)
		}
	}
	assert.Equal(t, []string{
		service.EventCharged, service.EventText, service.EventImagePending, service.EventImage, service.EventDone,
	}, types)

	_, resp, err := websocket.DefaultDialer.Dial(strings.Replace(url, "future_vision", "nope", 1), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
