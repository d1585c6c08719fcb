package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"a","count":2}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "syntax", body: `{"name":}`, wantErr: "badly-formed JSON"},
		{name: "truncated", body: `{"name":"a"`, wantErr: "badly-formed JSON"},
		{name: "wrong type", body: `{"count":"two"}`, wantErr: `incorrect JSON type for field "count"`},
		{name: "unknown key", body: `{"colour":"red"}`, wantErr: `unknown key "colour"`},
		{name: "two values", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON value"},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: "must not be larger than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{Name: "a", Count: 2}, dst)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var rr *httptest.ResponseRecorder
	middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr = httptest.NewRecorder()
		ErrorResponse(rr, r, http.StatusTeapot, "no coffee")
	})).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, rr)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "no coffee", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONResponse(rr, httptest.NewRequest(http.MethodDelete, "/", nil), http.StatusNoContent, map[string]string{"ignored": "yes"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, VerifyAudience(nil, ""))
	assert.False(t, VerifyAudience(nil, "rotinaai-app"))
	assert.True(t, VerifyAudience(jwt.ClaimStrings{"other", "rotinaai-app"}, "rotinaai-app"))
	assert.False(t, VerifyAudience(jwt.ClaimStrings{"other"}, "rotinaai-app"))
}
