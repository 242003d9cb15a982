package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/engagement/internal/middleware"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func signed(t *testing.T, claims jwt.Claims, key []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

// serve runs mw in front of a handler echoing the user id from the context
func serve(mw echo.MiddlewareFunc, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		id, _ := c.Get(middleware.UserIDKey).(string)
		return c.String(http.StatusOK, id)
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Parallel()

	valid := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "subject claim", header: "Bearer " + signed(t, valid, secret), status: http.StatusOK, body: "alice"},
		{
			name:   "user_id claim wins over subject",
			header: "Bearer " + signed(t, &middleware.Claims{UserID: "bob", RegisteredClaims: valid}, secret),
			status: http.StatusOK,
			body:   "bob",
		},
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + signed(t, valid, []byte("other")), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signed(t, expired, secret), status: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + signed(t, jwt.RegisteredClaims{}, secret), status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(middleware.JWTAuthMiddleware(secret), tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &auth.Token{UID: uid}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	t.Parallel()

	mw := middleware.FirebaseAuthMiddleware(fakeVerifier{"good": "firebase-uid"})

	rec := serve(mw, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "firebase-uid", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(mw, "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(mw, "").Code)
}
