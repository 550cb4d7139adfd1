package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/staffops/staffops-backend/pkg/actor"
	"github.com/staffops/staffops-backend/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "staffops-identity"
)

type tokenOpts struct {
	secret string
	issuer string
	role   string
	expiry time.Time
}

func signToken(t *testing.T, opts tokenOpts) string {
	t.Helper()

	if opts.secret == "" {
		opts.secret = testSecret
	}
	if opts.issuer == "" {
		opts.issuer = testIssuer
	}
	if opts.role == "" {
		opts.role = "staff"
	}
	if opts.expiry.IsZero() {
		opts.expiry = time.Now().Add(time.Hour)
	}

	claims := jwt.MapClaims{
		"sub":   uuid.New().String(),
		"name":  "Dana Reviewer",
		"email": "dana@staffops.io",
		"role":  opts.role,
		"iss":   opts.issuer,
		"exp":   opts.expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.secret))
	require.NoError(t, err)
	return signed
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RejectsBadSignature(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	token := signToken(t, tokenOpts{secret: "wrong-secret"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RejectsWrongIssuer(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	token := signToken(t, tokenOpts{issuer: "someone-else"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	token := signToken(t, tokenOpts{expiry: time.Now().Add(-time.Hour)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RejectsUnknownRole(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	token := signToken(t, tokenOpts{role: "superuser"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_AttachesActor(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)

	var got *actor.Actor
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = actor.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, tokenOpts{role: "leader"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(token))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "leader", got.Role)
	assert.Equal(t, "Dana Reviewer", got.DisplayName)
	assert.NotEmpty(t, got.ID)
}

func TestAuth_HealthIsExempt(t *testing.T) {
	mw := httputil.Auth(testSecret, testIssuer)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var ctxID string
	handler := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = httputil.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	handler := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "incoming-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "incoming-id", rec.Header().Get("X-Request-ID"))
}
