package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sphere/internal/auth"
	"sphere/internal/config"
	"sphere/internal/guard"
	"sphere/internal/handler"
	"sphere/internal/model"
	"sphere/internal/redirect"
	"sphere/internal/service"
	"sphere/internal/session"
)

// verifyHold parks one token verification until release is closed.
type verifyHold struct {
	started chan struct{}
	release chan struct{}
}

// fakeBackend emulates the portal backend API for one account.
type fakeBackend struct {
	role           model.RoleSlug
	dashboard401   atomic.Bool
	logoutHits     atomic.Int32
	logoutFailure  atomic.Bool
	holdNextVerify atomic.Pointer[verifyHold]
}

func (f *fakeBackend) user() map[string]any {
	return map[string]any{
		"id":    5,
		"email": "sari@example.com",
		"name":  "Sari",
		"role":  map[string]any{"name": string(f.role), "slug": string(f.role), "level": f.role.Rank()},
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	write := func(status int, body map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
	authorized := r.Header.Get("Authorization") == "Bearer tok-1"

	switch r.URL.Path {
	case "/auth/login":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			write(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
			return
		}
		write(http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"user": f.user(), "access_token": "tok-1", "token_type": "Bearer", "expires_in": 3600,
		}})
	case "/auth/verify-token":
		if h := f.holdNextVerify.Swap(nil); h != nil {
			close(h.started)
			<-h.release
		}
		if !authorized {
			write(http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthenticated"})
			return
		}
		write(http.StatusOK, map[string]any{"success": true, "data": map[string]any{"valid": true, "user": f.user()}})
	case "/auth/logout":
		f.logoutHits.Add(1)
		if f.logoutFailure.Load() {
			write(http.StatusInternalServerError, map[string]any{"success": false})
			return
		}
		write(http.StatusOK, map[string]any{"success": true})
	case "/dashboard":
		if !authorized || f.dashboard401.Load() {
			write(http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		write(http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"user":     f.user(),
			"projects": []map[string]any{{"id": "fg-store", "name": "FG Store", "url": "http://fg.local"}},
		}})
	case "/users":
		write(http.StatusOK, map[string]any{"success": true, "data": []any{f.user()}})
	case "/users/roles/available":
		write(http.StatusOK, map[string]any{"success": true, "data": []any{map[string]any{"name": "User", "slug": "user"}}})
	case "/audit-logs":
		write(http.StatusOK, map[string]any{"success": true, "data": []any{}, "pagination": map[string]any{"current_page": 1, "last_page": 1}})
	case "/audit-logs/filters/actions", "/audit-logs/filters/entity-types":
		write(http.StatusOK, map[string]any{"success": true, "data": []string{"x"}})
	default:
		write(http.StatusNotFound, map[string]any{"success": false, "message": "Not found"})
	}
}

type testPortal struct {
	e       *echo.Echo
	backend *fakeBackend
	store   *session.MemoryBackend
}

func newTestPortal(t *testing.T, role model.RoleSlug) *testPortal {
	t.Helper()
	backend := &fakeBackend{role: role}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		BackendTimeout: 2 * time.Second,
		LoginRateLimit: 5,
		SessionTTL:     time.Hour,
	}
	store := session.NewMemoryBackend()
	policy := redirect.DefaultPolicy()
	guards := guard.NewRegistry(policy, zap.NewNop())
	portal := &Portal{
		Signer:   auth.NewSessionSigner("test-secret", time.Hour),
		Sessions: store,
		Guards:   guards,
		Policy:   policy,
		Logger:   zap.NewNop(),
	}

	e := echo.New()
	Register(e, cfg, portal,
		handler.NewAuthHandler(policy, guards, zap.NewNop()),
		handler.NewMenuHandler(func(api service.API) service.DashboardService { return service.NewDashboardService(api, nil) }),
		handler.NewUserHandler(func(api service.API) service.UserService { return service.NewUserService(api, nil) }),
		handler.NewDepartmentHandler(func(api service.API) service.DepartmentService { return service.NewDepartmentService(api) }),
		handler.NewAuditLogHandler(func(api service.API) service.AuditLogService { return service.NewAuditLogService(api, nil) }),
	)
	return &testPortal{e: e, backend: backend, store: store}
}

func (p *testPortal) do(method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookieOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

// signIn opens a session and signs in, returning the session cookie.
func (p *testPortal) signIn(t *testing.T, returnTo string) (*http.Cookie, *httptest.ResponseRecorder) {
	t.Helper()
	cookie := sessionCookieOf(t, p.do(http.MethodGet, "/", "", nil))
	body := `{"email":"sari@example.com","password":"secret","return_to":"` + returnTo + `"}`
	return cookie, p.do(http.MethodPost, "/signin", body, cookie)
}

func TestProtectedRouteWithoutSessionRedirectsToSignin(t *testing.T) {
	p := newTestPortal(t, model.RoleAdmin)

	rec := p.do(http.MethodGet, "/main-menu", "", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin#/signin", rec.Header().Get(echo.HeaderLocation))
	cookie := sessionCookieOf(t, rec)
	assert.True(t, cookie.HttpOnly)
}

func TestSigninThenMainMenu(t *testing.T) {
	p := newTestPortal(t, model.RoleUser)

	cookie, rec := p.signIn(t, "/signin#/projects/fg-store/launch")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var signin handler.SigninResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signin))
	assert.Equal(t, "/projects/fg-store/launch", signin.Redirect)
	assert.Equal(t, "Sari", signin.User.Name)

	rec = p.do(http.MethodGet, "/main-menu", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dash model.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Len(t, dash.Projects, 1)

	rec = p.do(http.MethodGet, "/signin", "", cookie)
	var page handler.SigninPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.True(t, page.Authenticated)
	assert.Equal(t, "sari@example.com", page.User.Email)
}

func TestSigninRejected(t *testing.T) {
	p := newTestPortal(t, model.RoleUser)
	cookie := sessionCookieOf(t, p.do(http.MethodGet, "/", "", nil))

	rec := p.do(http.MethodPost, "/signin", `{"email":"sari@example.com","password":"wrong"}`, cookie)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
}

func TestSigninValidation(t *testing.T) {
	p := newTestPortal(t, model.RoleUser)

	rec := p.do(http.MethodPost, "/signin", `{"email":"not-an-email","password":""}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleRequirements(t *testing.T) {
	tests := []struct {
		role     model.RoleSlug
		path     string
		wantCode int
		wantLoc  string
	}{
		{model.RoleUser, "/logs", http.StatusFound, "/main-menu"},
		{model.RoleUser, "/user-manage", http.StatusFound, "/main-menu"},
		{model.RoleAdmin, "/logs", http.StatusOK, ""},
		{model.RoleAdmin, "/department-manage", http.StatusFound, "/main-menu"},
		{model.RoleSuperAdmin, "/logs", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+tt.path, func(t *testing.T) {
			p := newTestPortal(t, tt.role)
			cookie, rec := p.signIn(t, "")
			require.Equal(t, http.StatusOK, rec.Code)

			rec = p.do(http.MethodGet, tt.path, "", cookie)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantLoc, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestBackend401ClearsSessionAndRedirects(t *testing.T) {
	p := newTestPortal(t, model.RoleAdmin)
	cookie, rec := p.signIn(t, "")
	require.Equal(t, http.StatusOK, rec.Code)

	p.backend.dashboard401.Store(true)
	rec = p.do(http.MethodGet, "/main-menu", "", cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin#/signin", rec.Header().Get(echo.HeaderLocation))

	rec = p.do(http.MethodGet, "/", "", cookie)
	var landing handler.LandingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &landing))
	assert.False(t, landing.Authenticated)
	assert.Equal(t, "/signin#/signin", landing.SigninURL)
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	p := newTestPortal(t, model.RoleAdmin)
	p.backend.logoutFailure.Store(true)
	cookie, rec := p.signIn(t, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = p.do(http.MethodPost, "/logout", "", cookie)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, p.backend.logoutHits.Load())
	rec = p.do(http.MethodGet, "/main-menu", "", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin#/signin", rec.Header().Get(echo.HeaderLocation))
}

func TestSigninIsRateLimited(t *testing.T) {
	p := newTestPortal(t, model.RoleUser)
	body := `{"email":"sari@example.com","password":"wrong"}`

	var last int
	for i := 0; i < 6; i++ {
		last = p.do(http.MethodPost, "/signin", body, nil).Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestOperationalEndpoints(t *testing.T) {
	p := newTestPortal(t, model.RoleUser)

	assert.Equal(t, http.StatusOK, p.do(http.MethodGet, "/healthz", "", nil).Code)

	rec := p.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// slowFirstRequest sends first while its token verification is held back,
// then sends second and lets the first one finish.
func (p *testPortal) slowFirstRequest(t *testing.T, cookie *http.Cookie, first, second string) (firstRec, secondRec *httptest.ResponseRecorder) {
	t.Helper()
	hold := &verifyHold{started: make(chan struct{}), release: make(chan struct{})}
	p.backend.holdNextVerify.Store(hold)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- p.do(http.MethodGet, first, "", cookie) }()
	select {
	case <-hold.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the backend")
	}

	secondRec = p.do(http.MethodGet, second, "", cookie)
	close(hold.release)
	select {
	case firstRec = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first request did not return")
	}
	return firstRec, secondRec
}

func TestConcurrentDataRequestsAreAllServed(t *testing.T) {
	p := newTestPortal(t, model.RoleAdmin)
	cookie, rec := p.signIn(t, "")
	require.Equal(t, http.StatusOK, rec.Code)

	first, second := p.slowFirstRequest(t, cookie, "/api/audit-logs/filters/actions", "/api/audit-logs/filters/entity-types")

	assert.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.JSONEq(t, `["x"]`, first.Body.String())
}

func TestOverlappingPageNavigationsKeepOnlyTheLatest(t *testing.T) {
	p := newTestPortal(t, model.RoleAdmin)
	cookie, rec := p.signIn(t, "")
	require.Equal(t, http.StatusOK, rec.Code)

	first, second := p.slowFirstRequest(t, cookie, "/logs", "/user-manage")

	assert.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.JSONEq(t, `{"state":"verifying"}`, first.Body.String())
}
