package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var seenID string
	r := mux.NewRouter()
	r.Use(RequestLogger)
	r.HandleFunc("/api/controllers/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		assert.Equal(t, "/api/controllers/{id}", routeTemplate(r))
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/controllers/abc", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/controllers/abc", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", seenID)
}

func TestRouteTemplate_Unmatched(t *testing.T) {
	assert.Equal(t, "unmatched", routeTemplate(httptest.NewRequest(http.MethodGet, "/x", nil)))
}
