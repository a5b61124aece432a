package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/constants"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyRecorder struct {
	keys  []string
	allow bool
}

func (k *keyRecorder) Allow(ctx context.Context, key string) bool {
	k.keys = append(k.keys, key)
	return k.allow
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RecoverMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestIdMiddleware(LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/cart?x=1", nil)
	req.Header.Set(constants.RequestIDHeaderKey, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/cart?x=1", entry["url"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(0), entry["buyer_id"])
}

func TestAuthMiddlewares(t *testing.T) {
	maker, err := token.NewJWTMaker("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	tok, _, err := maker.CreateToken(7, "a@example.com", "BUYER", "Ann", time.Minute)
	require.NoError(t, err)

	var got *token.Payload
	h := AuthPayloadMiddleware(maker)(AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = util.GetTokenPayloadFromContext(r.Context())
	})))

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + tok, status: http.StatusOK},
		{name: "lower case scheme", header: "bearer " + tok, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + tok, status: http.StatusUnauthorized},
		{name: "malformed", header: "Bearer", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, int64(7), got.BuyerID)
			}
		})
	}
}

func TestRateLimitMiddleware_Keys(t *testing.T) {
	rl := &keyRecorder{allow: true}
	h := NewRateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	ctx := context.WithValue(context.Background(), constants.AuthorizationPayloadKey, &token.Payload{BuyerID: 9})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	assert.Equal(t, []string{"ip:10.0.0.1:1234", "buyer:9"}, rl.keys)

	rl.allow = false
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
