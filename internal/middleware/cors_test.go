package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"moz-extension://*", "http://localhost:8080"}

	assert.True(t, OriginAllowed(allowed, "moz-extension://1234-abcd"))
	assert.True(t, OriginAllowed(allowed, "http://localhost:8080"))
	assert.False(t, OriginAllowed(allowed, "https://evil.example"))
	assert.True(t, OriginAllowed([]string{"*"}, "https://anything"))
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"chrome-extension://*"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "chrome-extension://abc", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/report", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
