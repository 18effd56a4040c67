package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAPIKey(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	t.Run("Valid Key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderAPIKey, "secret")
		w := httptest.NewRecorder()

		RequireAPIKey("secret")(next).ServeHTTP(w, req)

		if !called {
			t.Error("handler not called with valid key")
		}
	})

	t.Run("Wrong Key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderAPIKey, "wrong")
		w := httptest.NewRecorder()

		RequireAPIKey("secret")(next).ServeHTTP(w, req)

		if called {
			t.Error("handler called with wrong key")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("Missing Key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		RequireAPIKey("secret")(next).ServeHTTP(w, req)

		if called {
			t.Error("handler called without key")
		}
	})

	t.Run("Check Disabled", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		RequireAPIKey("")(next).ServeHTTP(w, req)

		if !called {
			t.Error("handler not called when check disabled")
		}
	})
}
