package settings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpx "github.com/dropDatabas3/ajustes/internal/http"
	settingsctl "github.com/dropDatabas3/ajustes/internal/http/controllers/settings"
	jwtx "github.com/dropDatabas3/ajustes/internal/jwt"
	"github.com/dropDatabas3/ajustes/internal/rate"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	svc "github.com/dropDatabas3/ajustes/internal/settings"
	"github.com/dropDatabas3/ajustes/internal/storage"
	"github.com/dropDatabas3/ajustes/internal/store"
	_ "github.com/dropDatabas3/ajustes/internal/store/noop"
)

// testRouter arma el router completo contra el driver noop (modo demo, sin
// base de datos). Alcanza para probar auth, ruteo y el mapeo de errores.
func testRouter(t *testing.T) (http.Handler, *jwtx.Manager) {
	t.Helper()

	st, err := store.Open(context.Background(), store.Config{Driver: "none"})
	if err != nil {
		t.Fatal(err)
	}
	tokens := jwtx.NewManager("secreto-de-test", "ajustes")

	service := svc.NewService(svc.Deps{
		Settings:     st.Settings(),
		Identity:     st.Identities(),
		VerifyTokens: st.VerificationTokens(),
		Objects:      storage.NewMemory("http://cdn.test"),
		Cooldowns:    rate.NewMemoryCooldowns(),
		Rollbacks:    rollback.NewMemoryStore(),
		Tokens:       tokens,
	})

	router := httpx.NewRouter(httpx.RouterDeps{
		Settings: settingsctl.NewController(service),
		Tokens:   tokens,
	})
	return router, tokens
}

func authed(t *testing.T, tokens *jwtx.Manager, req *http.Request) *http.Request {
	t.Helper()
	session, err := tokens.IssueSession("u1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+session)
	return req
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("body no es JSON: %v", err)
	}
	return body.Code
}

func TestGetSettingsRequiresSession(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/settings", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := decodeErr(t, rec); code != "UNAUTHORIZED" {
		t.Errorf("code = %q", code)
	}
}

func TestGetSettingsDemoModeUnavailable(t *testing.T) {
	router, tokens := testRouter(t)

	rec := httptest.NewRecorder()
	req := authed(t, tokens, httptest.NewRequest(http.MethodGet, "/v1/settings", nil))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if code := decodeErr(t, rec); code != "ADMIN_SDK_UNAVAILABLE" {
		t.Errorf("code = %q", code)
	}
}

func TestRollbackUnknownTokenGone(t *testing.T) {
	router, tokens := testRouter(t)

	body := strings.NewReader(`{"token":"no-existe"}`)
	req := authed(t, tokens, httptest.NewRequest(http.MethodPost, "/v1/settings/rollback", body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
	if code := decodeErr(t, rec); code != "ROLLBACK_INVALID" {
		t.Errorf("code = %q", code)
	}
}

func TestPatchAppearanceRejectsBadJSON(t *testing.T) {
	router, tokens := testRouter(t)

	body := strings.NewReader(`{"theme": `)
	req := authed(t, tokens, httptest.NewRequest(http.MethodPatch, "/v1/settings/appearance", body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeErr(t, rec); code != "INVALID_JSON" {
		t.Errorf("code = %q", code)
	}
}

func TestConfirmEmailIsPublic(t *testing.T) {
	router, _ := testRouter(t)

	// Sin sesión: la ruta responde (400 por token faltante, no 401)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/settings/email/confirm", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
