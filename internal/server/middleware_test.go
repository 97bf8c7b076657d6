package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/roastme/internal/common"
)

func testConfig() *common.Config {
	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = testSecret
	return config
}

// captureIdentity returns a handler that records the UserContext it sees.
func captureIdentity(got **common.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = common.UserContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerTokenMiddleware_ValidToken(t *testing.T) {
	var uc *common.UserContext
	handler := bearerTokenMiddleware(testConfig())(captureIdentity(&uc))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", bearerFor(t, "user_123"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if uc == nil {
		t.Fatal("Expected UserContext to be present")
	}
	if uc.IdentityRef != "user_123" {
		t.Errorf("Expected IdentityRef=user_123, got %s", uc.IdentityRef)
	}
	if uc.Email != "user_123@example.com" {
		t.Errorf("Expected email from claims, got %s", uc.Email)
	}
}

func TestBearerTokenMiddleware_NoHeader(t *testing.T) {
	var uc *common.UserContext
	handler := bearerTokenMiddleware(testConfig())(captureIdentity(&uc))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if uc != nil {
		t.Error("Expected nil UserContext for anonymous request")
	}
}

func TestBearerTokenMiddleware_Rejections(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
	noSub := signToken(t, jwt.MapClaims{"email": "a@example.com", "exp": time.Now().Add(time.Hour).Unix()})
	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("other"))

	tests := map[string]string{
		"garbage":   "not-a-jwt",
		"expired":   expired,
		"no sub":    noSub,
		"wrong key": wrongKey,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := bearerTokenMiddleware(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rr.Code)
			}
			if !strings.HasPrefix(rr.Header().Get("WWW-Authenticate"), "Bearer") {
				t.Errorf("Expected Bearer challenge, got %q", rr.Header().Get("WWW-Authenticate"))
			}
			if called {
				t.Error("Next handler should not be called")
			}
		})
	}
}

func TestBearerTokenMiddleware_Issuer(t *testing.T) {
	config := testConfig()
	config.Auth.Issuer = "https://clerk.roastme.ai"

	var uc *common.UserContext
	handler := bearerTokenMiddleware(config)(captureIdentity(&uc))

	good := signToken(t, jwt.MapClaims{"sub": "u1", "iss": "https://clerk.roastme.ai", "exp": time.Now().Add(time.Hour).Unix()})
	bad := signToken(t, jwt.MapClaims{"sub": "u1", "iss": "https://evil.example", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || uc == nil {
		t.Fatalf("Expected matching issuer to pass, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong issuer, got %d", rr.Code)
	}
}

func TestValidateJWT_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := validateJWT(s, []byte(testSecret), ""); err == nil {
		t.Error("Expected unsigned token to be rejected")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/roast", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS origin header")
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Correlation-ID"); got != "abc123" {
		t.Errorf("Expected propagated ID abc123, got %q", got)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("X-Correlation-ID"); len(got) != 8 {
		t.Errorf("Expected generated 8-char ID, got %q", got)
	}
}

func TestLoggingMiddleware_LogsRejectedTokens(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWithLogger(t, true, common.NewLoggerWithOutput("info", &buf))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := env.do(req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"status":401`) || !strings.Contains(out, `"path":"/api/dashboard"`) {
		t.Errorf("Expected 401 request to be logged, got %q", out)
	}
}

func TestLoggingMiddleware_RecordsIdentityAndRoute(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWithLogger(t, true, common.NewLoggerWithOutput("info", &buf))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", bearerFor(t, "missing-user"))
	rr := env.do(req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	if out := buf.String(); !strings.Contains(out, `"identity":"missing-user"`) {
		t.Errorf("Expected identity in request log, got %q", out)
	}
}
