package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	local := []string{"http://localhost:5173"}

	tests := []struct {
		name              string
		origins           []string
		method            string
		origin            string
		preflight         bool
		expectStatus      int
		expectAllowed     string
		expectCredentials string
	}{
		{
			name:              "allowed origin",
			origins:           local,
			method:            http.MethodGet,
			origin:            "http://localhost:5173",
			expectStatus:      http.StatusTeapot,
			expectAllowed:     "http://localhost:5173",
			expectCredentials: "true",
		},
		{
			name:         "unknown origin gets no headers",
			origins:      local,
			method:       http.MethodGet,
			origin:       "https://evil.example",
			expectStatus: http.StatusTeapot,
		},
		{
			name:          "wildcard never allows credentials",
			origins:       []string{"*"},
			method:        http.MethodGet,
			origin:        "https://anywhere.example",
			expectStatus:  http.StatusTeapot,
			expectAllowed: "*",
		},
		{
			name:              "preflight short-circuits",
			origins:           local,
			method:            http.MethodOptions,
			origin:            "http://localhost:5173",
			preflight:         true,
			expectStatus:      http.StatusNoContent,
			expectAllowed:     "http://localhost:5173",
			expectCredentials: "true",
		},
		{
			name:         "preflight from unknown origin",
			origins:      local,
			method:       http.MethodOptions,
			origin:       "https://evil.example",
			preflight:    true,
			expectStatus: http.StatusNoContent,
		},
		{
			name:         "plain options passes through",
			origins:      local,
			method:       http.MethodOptions,
			expectStatus: http.StatusTeapot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/albums", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
				req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
			}
			rec := httptest.NewRecorder()

			CORS(tt.origins)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectStatus, rec.Code)
			assert.Equal(t, tt.expectAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectCredentials, rec.Header().Get("Access-Control-Allow-Credentials"))
			if tt.preflight && tt.expectAllowed != "" {
				assert.Equal(t, http.MethodPut, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			}
		})
	}
}
