package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	h := middleware.CORSMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.participasonora.mx")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.participasonora.mx" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	h := middleware.CORSMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin echoed back: %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := middleware.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if called {
		t.Error("preflight reached the inner handler")
	}
}

func TestRequireRoles(t *testing.T) {
	h := middleware.RequireRoles(utils.RoleAdmin)(okHandler())

	// No principal in context.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no principal: status = %d, want 401", rec.Code)
	}

	// Wrong role.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.WithPrincipal(req.Context(), utils.Principal{ID: 1, Role: utils.RoleCapturista}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: status = %d, want 403", rec.Code)
	}

	// Matching role.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.WithPrincipal(req.Context(), utils.Principal{ID: 1, Role: utils.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestRequireLeader(t *testing.T) {
	h := middleware.RequireLeader(okHandler())

	cases := []struct {
		role string
		want int
	}{
		{utils.RoleAdmin, http.StatusOK},
		{utils.RolePresidente, http.StatusOK},
		{utils.RoleLiderMunicipal, http.StatusOK},
		{utils.RoleCapturista, http.StatusForbidden},
		{utils.RoleCiudadano, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(utils.WithPrincipal(req.Context(), utils.Principal{ID: 1, Role: tc.role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}

func TestRateLimitThrottlesPerIP(t *testing.T) {
	h := middleware.RateLimit(rate.Limit(1), 2)(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if send("10.0.0.1:1000") != http.StatusOK || send("10.0.0.1:1000") != http.StatusOK {
		t.Fatal("burst requests should pass")
	}
	if send("10.0.0.1:1000") != http.StatusTooManyRequests {
		t.Error("third request within the burst window should be throttled")
	}
	// Another client is unaffected.
	if send("10.0.0.2:1000") != http.StatusOK {
		t.Error("separate IP throttled")
	}
}
