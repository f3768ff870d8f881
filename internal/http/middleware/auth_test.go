package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(verifier TokenVerifier, opts AuthOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(verifier, opts))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFrom(c))
	})
	return r
}

func TestAuth_ValidBearerToken(t *testing.T) {
	verifier := VerifierFunc(func(_ context.Context, token string) (string, error) {
		if token != "good-token" {
			return "", errors.New("unknown token")
		}
		return "u1", nil
	})
	r := authRouter(verifier, AuthOptions{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "u1" {
		t.Fatalf("user = %q", w.Body.String())
	}
}

func TestAuth_MissingToken(t *testing.T) {
	r := authRouter(VerifierFunc(func(context.Context, string) (string, error) {
		t.Fatal("verifier called without a token")
		return "", nil
	}), AuthOptions{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("WWW-Authenticate header missing")
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	verifier := VerifierFunc(func(context.Context, string) (string, error) {
		return "", errors.New("expired")
	})
	r := authRouter(verifier, AuthOptions{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAuth_HeaderFallbackGatedByOption(t *testing.T) {
	verifier := VerifierFunc(func(context.Context, string) (string, error) {
		return "", errors.New("no tokens here")
	})

	// Enabled: X-User-ID identifies the caller without a token.
	r := authRouter(verifier, AuthOptions{AllowHeaderFallback: true})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "tester")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "tester" {
		t.Fatalf("fallback enabled: status=%d body=%q", w.Code, w.Body.String())
	}

	// Disabled: the same request is anonymous and rejected.
	r = authRouter(verifier, AuthOptions{})
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "tester")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("fallback disabled: status = %d", w.Code)
	}
}

func TestAuth_BearerTokenWinsOverHeader(t *testing.T) {
	verifier := VerifierFunc(func(_ context.Context, token string) (string, error) {
		return "token-user", nil
	})
	r := authRouter(verifier, AuthOptions{AllowHeaderFallback: true})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set("X-User-ID", "header-user")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "token-user" {
		t.Fatalf("user = %q, want the verified token identity", w.Body.String())
	}
}

func TestBearerToken_Parsing(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Bearer ", ""},
		{"Basic abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
