package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestOriginAllowlist(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"exact entry", []string{"https://app.skillmatch.dev"}, "https://app.skillmatch.dev", true},
		{"exact entry does not match a subdomain", []string{"https://app.skillmatch.dev"}, "https://evil.app.skillmatch.dev", false},
		{"any port on localhost", []string{"http://localhost:*"}, "http://localhost:5173", true},
		{"wildcard keeps the scheme", []string{"http://localhost:*"}, "https://localhost:5173", false},
		{"partial wildcard", []string{"http://local*"}, "http://localhost:5173", true},
		{"second entry matches", []string{"http://localhost:*", "https://app.skillmatch.dev"}, "https://app.skillmatch.dev", true},
		{"unknown origin", []string{"http://localhost:*"}, "http://evil.com", false},
		{"no origin header", []string{"http://localhost:*"}, "", false},
		{"bare wildcard still needs an origin", []string{"*"}, "", false},
		{"bare wildcard", []string{"*"}, "http://anything.example", true},
		{"empty allowlist", nil, "http://localhost:5173", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newOriginAllowlist(tt.allowed).allows(tt.origin); got != tt.want {
				t.Errorf("allows(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:*"}))
	router.GET("/api/v1/reports/:id", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="resume_match_report.pdf"`)
		c.String(http.StatusOK, "pdf")
	})
	router.POST("/api/v1/analyze", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	tests := []struct {
		name       string
		method     string
		path       string
		origin     string
		wantStatus int
		wantCORS   bool
	}{
		{"allowed origin downloads a report", "GET", "/api/v1/reports/1", "http://localhost:5173", http.StatusOK, true},
		{"allowed origin preflight", "OPTIONS", "/api/v1/analyze", "http://localhost:5173", http.StatusNoContent, true},
		{"disallowed origin is served without CORS headers", "GET", "/api/v1/reports/1", "http://evil.com", http.StatusOK, false},
		{"disallowed origin preflight", "OPTIONS", "/api/v1/analyze", "http://evil.com", http.StatusNoContent, false},
		{"same-origin request", "POST", "/api/v1/analyze", "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == "OPTIONS" {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Header().Get("Vary") != "Origin" {
				t.Errorf("Vary = %q, want Origin", w.Header().Get("Vary"))
			}

			allowOrigin := w.Header().Get("Access-Control-Allow-Origin")
			if !tt.wantCORS {
				if allowOrigin != "" {
					t.Errorf("Access-Control-Allow-Origin = %s, want none", allowOrigin)
				}
				return
			}

			if allowOrigin != tt.origin {
				t.Errorf("Access-Control-Allow-Origin = %s, want %s", allowOrigin, tt.origin)
			}
			if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Access-Control-Allow-Credentials not set to true")
			}
			if w.Header().Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
				t.Errorf("Access-Control-Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
			}
			if w.Header().Get("Access-Control-Expose-Headers") != "Content-Disposition, Retry-After" {
				t.Errorf("Access-Control-Expose-Headers = %q", w.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(perMinute int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimitMiddleware(perMinute))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	do := func(router *gin.Engine, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("allows a burst of perMinute requests then rejects", func(t *testing.T) {
		router := newRouter(3)

		for i := 0; i < 3; i++ {
			if w := do(router, "10.0.0.1"); w.Code != http.StatusOK {
				t.Fatalf("request %d: Status = %d, want %d", i+1, w.Code, http.StatusOK)
			}
		}

		w := do(router, "10.0.0.1")
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusTooManyRequests)
		}
		if w.Header().Get("Retry-After") != "20" {
			t.Errorf("Retry-After = %q, want 20", w.Header().Get("Retry-After"))
		}
	})

	t.Run("limits each IP separately", func(t *testing.T) {
		router := newRouter(1)

		if w := do(router, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("first IP: Status = %d, want %d", w.Code, http.StatusOK)
		}
		if w := do(router, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
			t.Errorf("first IP again: Status = %d, want %d", w.Code, http.StatusTooManyRequests)
		}
		if w := do(router, "10.0.0.2"); w.Code != http.StatusOK {
			t.Errorf("second IP: Status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		router := newRouter(0)

		for i := 0; i < 50; i++ {
			if w := do(router, "10.0.0.1"); w.Code != http.StatusOK {
				t.Fatalf("request %d: Status = %d, want %d", i+1, w.Code, http.StatusOK)
			}
		}
	})
}

func TestIPRateLimiter_SweepsIdleVisitors(t *testing.T) {
	now := time.Now()
	limiter := newIPRateLimiter(10)
	limiter.now = func() time.Time { return now }

	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")
	if len(limiter.visitors) != 2 {
		t.Fatalf("visitors = %d, want 2", len(limiter.visitors))
	}

	now = now.Add(visitorIdleTimeout + time.Second)
	limiter.allow("10.0.0.3")

	if len(limiter.visitors) != 1 {
		t.Errorf("visitors = %d, want 1 after sweep", len(limiter.visitors))
	}
	if _, ok := limiter.visitors["10.0.0.3"]; !ok {
		t.Error("active visitor was swept")
	}
}
