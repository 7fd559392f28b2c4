package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	defer srv.Close()

	timing, err := Remote(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, timing.StatusCode)
	assert.GreaterOrEqual(t, timing.Total.Nanoseconds(), int64(0))
	assert.GreaterOrEqual(t, timing.ServerProcessing.Nanoseconds(), int64(0))
}

func TestRemoteNon200IsNotFatal(t *testing.T) {
	// sqld answers plain GETs with an error status while being healthy.
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
	defer srv.Close()

	timing, err := Remote(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, timing.StatusCode)
}

func TestRemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // shut down before probing

	_, err := Remote(context.Background(), srv.URL)
	assert.Error(t, err)
}
