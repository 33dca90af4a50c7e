package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
)

func TestRequestID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"echoes inbound id", "req-123", true},
		{"assigns when missing", "", false},
		{"replaces oversized id", strings.Repeat("x", 200), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/healthcheck", func(c *gin.Context) {
				seen = ctxutil.RequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
			if tc.inbound != "" {
				req.Header.Set("X-Request-Id", tc.inbound)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-Id")
			if got == "" || got != seen {
				t.Fatalf("header=%q context=%q", got, seen)
			}
			if tc.keep && got != tc.inbound {
				t.Fatalf("want inbound id %q, got %q", tc.inbound, got)
			}
			if !tc.keep && got == tc.inbound {
				t.Fatalf("inbound id %q should have been replaced", tc.inbound)
			}
		})
	}
}
