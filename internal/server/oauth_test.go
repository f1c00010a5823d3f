package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"spotexport/internal/shared"
)

func newHandlerWithTokenServer(t *testing.T) *OAuthHandler {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new_token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	config := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
	}

	return NewOAuthHandler(config, "expected_state")
}

func awaitResult(t *testing.T, h *OAuthHandler) OAuthResult {
	t.Helper()

	select {
	case result := <-h.Result():
		return result
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
		return OAuthResult{}
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Successful Callback", func(t *testing.T) {
		h := newHandlerWithTokenServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/callback?state=expected_state&code=auth_code", nil)
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}

		result := awaitResult(t, h)
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token.AccessToken != "new_token" {
			t.Errorf("access token = %q", result.Token.AccessToken)
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		h := newHandlerWithTokenServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/callback?state=forged&code=auth_code", nil)
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := awaitResult(t, h)
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("Denied Authorization", func(t *testing.T) {
		h := newHandlerWithTokenServer(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/callback?state=expected_state&error=access_denied&error_description=user+denied", nil)
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := awaitResult(t, h)
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		h := newHandlerWithTokenServer(t)

		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest("GET", "/callback?state=expected_state&code=auth_code", nil))
		if first.Code != http.StatusOK {
			t.Fatalf("first callback status = %d", first.Code)
		}

		second := httptest.NewRecorder()
		h.ServeHTTP(second, httptest.NewRequest("GET", "/callback?state=expected_state&code=replayed", nil))
		if second.Code != http.StatusBadRequest {
			t.Errorf("replayed callback status = %d, want 400", second.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle("GET", "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
		if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
			t.Errorf("middleware order = %v", order)
		}
	})
}
