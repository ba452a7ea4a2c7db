package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseResolver_Resolve(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Write([]byte(`{"id":"7d2f5a3e-0000-4000-8000-000000000001","email":"maya@example.com"}`))
		case "Bearer no-id":
			w.Write([]byte(`{"email":"ghost@example.com"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	defer srv.Close()

	r := NewSupabaseResolver(Config{URL: srv.URL + "/", APIKey: "service-key"})
	ctx := context.Background()

	userID, err := r.Resolve(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "7d2f5a3e-0000-4000-8000-000000000001", userID)

	// cached
	_, err = r.Resolve(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = r.Resolve(ctx, "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = r.Resolve(ctx, "no-id")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = r.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSupabaseResolver_Unreachable(t *testing.T) {
	r := NewSupabaseResolver(Config{URL: "http://127.0.0.1:1"})

	_, err := r.Resolve(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, ErrUnauthorized, h)
	}
}
