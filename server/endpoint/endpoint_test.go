package endpoint_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/auth/password"
	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/server/endpoint"
	"github.com/kbukum/sessionkit/server/middleware"
	"github.com/kbukum/sessionkit/session"
	"github.com/kbukum/sessionkit/user"
	"github.com/kbukum/sessionkit/user/usertest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const alicePassword = "correct-horse"

type testEnv struct {
	engine *gin.Engine
	codec  *jwt.Codec
	store  *usertest.MemStore
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{now: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)}
	codec, err := jwt.NewCodec(jwt.Config{
		Secret:          strings.Repeat("s", 32),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, jwt.WithClock(func() time.Time { return env.now }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	env.codec = codec

	hasher := password.NewArgon2Hasher(
		password.WithArgon2Time(1),
		password.WithArgon2Memory(64),
		password.WithArgon2Threads(1),
	)
	hash, err := hasher.Hash(alicePassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	env.store = usertest.NewMemStore(&user.Record{
		ID:           "alice-id",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         user.RoleUser,
		CreatedAt:    env.now.Add(-24 * time.Hour),
	})

	pool := password.NewPoolWithHasher(hasher, 2, 8, time.Second)
	t.Cleanup(pool.Close)

	log := logger.NewNop()
	svc := session.New(env.store, pool, codec, log)
	cookies := endpoint.CookieConfig{Domain: "example.com"}
	cookies.ApplyDefaults()

	env.engine = gin.New()
	env.engine.GET("/health", endpoint.Health("sessiond", nil))
	endpoint.NewAuthHandler(svc, cookies, log).
		RegisterRoutes(env.engine, middleware.Auth(codec, cookies.AccessName))
	return env
}

func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T) (access, refresh *http.Cookie) {
	t.Helper()
	rr := e.do("POST", "/auth/login", map[string]string{"identifier": "alice", "password": alicePassword})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: status %d: %s", rr.Code, rr.Body.String())
	}
	return cookieNamed(rr, "token"), cookieNamed(rr, "refresh_token")
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rr.Body.String())
	}
	return body.Error.Code
}

func assertSessionCookie(t *testing.T, c *http.Cookie, name string) {
	t.Helper()
	if c == nil {
		t.Fatalf("missing %s cookie", name)
	}
	if !c.HttpOnly {
		t.Errorf("%s: expected HttpOnly", name)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("%s: expected SameSite=Lax, got %v", name, c.SameSite)
	}
	if c.Path != "/" {
		t.Errorf("%s: expected path /, got %q", name, c.Path)
	}
	if c.Domain != "example.com" {
		t.Errorf("%s: expected domain example.com, got %q", name, c.Domain)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/auth/login", map[string]string{"identifier": "Alice@Example.com", "password": alicePassword})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body endpoint.TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	access := cookieNamed(rr, "token")
	assertSessionCookie(t, access, "token")
	assertSessionCookie(t, cookieNamed(rr, "refresh_token"), "refresh_token")

	if body.Token == "" || body.Token != access.Value {
		t.Errorf("body token %q does not match access cookie %q", body.Token, access.Value)
	}
	claims, err := env.codec.Decode(body.Token)
	if err != nil || claims.Subject != "alice-id" {
		t.Errorf("unexpected access claims %+v (%v)", claims, err)
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"unknown user", map[string]string{"identifier": "nobody@example.com", "password": "x"}, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrong password", map[string]string{"identifier": "alice", "password": "wrong"}, http.StatusBadRequest, "BAD_CREDENTIAL"},
		{"missing identifier", map[string]string{"password": "x"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"not json", "identifier=alice", http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do("POST", "/auth/login", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if got := errorCode(t, rr); got != tt.wantErr {
				t.Errorf("code = %s, want %s", got, tt.wantErr)
			}
			if cookieNamed(rr, "token") != nil {
				t.Error("no cookie may be set on failure")
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	_, refresh := env.login(t)

	env.now = env.now.Add(20 * time.Minute)
	rr := env.do("POST", "/auth/refresh", nil, refresh)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body endpoint.TokenResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	access := cookieNamed(rr, "token")
	assertSessionCookie(t, access, "token")
	if access.Value != body.Token {
		t.Error("refreshed cookie and body token differ")
	}
	if cookieNamed(rr, "refresh_token") != nil {
		t.Error("refresh token must not be rotated")
	}
	claims, err := env.codec.Decode(body.Token)
	if err != nil || claims.Subject != "alice-id" || !claims.IssuedAt.Equal(env.now) {
		t.Errorf("unexpected refreshed claims %+v (%v)", claims, err)
	}
}

func TestRefreshErrors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/auth/refresh", nil)
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "MISSING_REFRESH_TOKEN" {
		t.Errorf("missing cookie: got %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do("POST", "/auth/refresh", nil, &http.Cookie{Name: "refresh_token", Value: "forged"})
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "INVALID_REFRESH_TOKEN" {
		t.Errorf("forged cookie: got %d %s", rr.Code, rr.Body.String())
	}

	_, refresh := env.login(t)
	env.now = env.now.Add(8 * 24 * time.Hour)
	rr = env.do("POST", "/auth/refresh", nil, refresh)
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "INVALID_REFRESH_TOKEN" {
		t.Errorf("expired cookie: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.login(t)

	first := env.do("POST", "/auth/logout", nil, access)
	second := env.do("POST", "/auth/logout", nil, access)

	for i, rr := range []*httptest.ResponseRecorder{first, second} {
		if rr.Code != http.StatusNoContent {
			t.Fatalf("call %d: expected 204, got %d", i+1, rr.Code)
		}
		for _, name := range []string{"token", "refresh_token"} {
			c := cookieNamed(rr, name)
			if c == nil || c.Value != "" || c.MaxAge >= 0 {
				t.Errorf("call %d: %s not cleared: %+v", i+1, name, c)
			}
		}
	}
	if strings.Join(first.Header().Values("Set-Cookie"), "\n") != strings.Join(second.Header().Values("Set-Cookie"), "\n") {
		t.Error("logout responses differ")
	}

	if rr := env.do("POST", "/auth/logout", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("logout without token: expected 401, got %d", rr.Code)
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.login(t)

	rr := env.do("GET", "/auth/profile", nil, access)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	for _, key := range []string{"id", "username", "email", "role", "createdAt"} {
		if _, ok := body[key]; !ok {
			t.Errorf("profile missing %q: %v", key, body)
		}
	}
	if strings.Contains(strings.ToLower(rr.Body.String()), "password") {
		t.Errorf("profile exposes password: %s", rr.Body.String())
	}

	env.now = env.now.Add(16 * time.Minute)
	if rr := env.do("GET", "/auth/profile", nil, access); rr.Code != http.StatusUnauthorized {
		t.Errorf("expired access token: expected 401, got %d", rr.Code)
	}
}

func TestProfileStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.login(t)
	env.store.FindErr = context.DeadlineExceeded

	rr := env.do("GET", "/auth/profile", nil, access)
	if rr.Code != http.StatusInternalServerError || errorCode(t, rr) != "INTERNAL_ERROR" {
		t.Errorf("got %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "deadline") {
		t.Errorf("cause leaked: %s", rr.Body.String())
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"created", map[string]string{"username": "bob", "email": "bob@example.com", "password": "hunter2hunter2"}, http.StatusOK, ""},
		{"username conflict", map[string]string{"username": "ALICE", "email": "new@example.com", "password": "hunter2hunter2"}, http.StatusConflict, "USERNAME_CONFLICT"},
		{"email conflict", map[string]string{"username": "bob", "email": "alice@example.com", "password": "hunter2hunter2"}, http.StatusConflict, "EMAIL_CONFLICT"},
		{"invalid", map[string]string{"username": "b", "email": "bob", "password": "x"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do("POST", "/auth/register", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantErr != "" {
				if got := errorCode(t, rr); got != tt.wantErr {
					t.Errorf("code = %s, want %s", got, tt.wantErr)
				}
				return
			}
			var p user.Profile
			if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
				t.Fatalf("decode profile: %v", err)
			}
			if p.ID == "" || p.Username != "bob" || p.Role != user.RoleUser {
				t.Errorf("unexpected profile %+v", p)
			}
			if strings.Contains(rr.Body.String(), "password") {
				t.Errorf("register response exposes password: %s", rr.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus component.HealthStatus
	}{
		{"no components", nil, http.StatusOK, component.StatusHealthy},
		{"healthy db", []component.Health{{Name: "database", Status: component.StatusHealthy}}, http.StatusOK, component.StatusHealthy},
		{"degraded", []component.Health{{Name: "database", Status: component.StatusDegraded}}, http.StatusOK, component.StatusDegraded},
		{"db down", []component.Health{
			{Name: "http-server", Status: component.StatusHealthy},
			{Name: "database", Status: component.StatusUnhealthy, Message: "ping failed"},
		}, http.StatusServiceUnavailable, component.StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", endpoint.Health("sessiond", func(context.Context) []component.Health {
				return tt.components
			}))

			rr := httptest.NewRecorder()
			engine.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var body endpoint.HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus || body.Service != "sessiond" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestCookieConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     endpoint.CookieConfig
		wantErr bool
	}{
		{"defaults", endpoint.CookieConfig{}, false},
		{"same names", endpoint.CookieConfig{AccessName: "t", RefreshName: "t"}, true},
		{"bad name", endpoint.CookieConfig{AccessName: "to ken"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
