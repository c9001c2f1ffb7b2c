package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

func newTestClient(timeout time.Duration) *DeliveryClient {
	return NewDeliveryClient(timeout, logger.NewLogger())
}

func TestDeliver_Success(t *testing.T) {
	var gotBody domain.WirePayload
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result := newTestClient(5*time.Second).Deliver(context.Background(), srv.URL, domain.WirePayload{Content: "ping"})

	assert.True(t, result.Success)
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusNoContent, *result.StatusCode)
	assert.Empty(t, result.Error)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "ping", gotBody.Content)
}

func TestDeliver_Non2xxWithStructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Cannot send an empty message", "code": 50006}`))
	}))
	defer srv.Close()

	result := newTestClient(5*time.Second).Deliver(context.Background(), srv.URL, domain.WirePayload{})

	assert.False(t, result.Success)
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusBadRequest, *result.StatusCode)
	assert.Equal(t, "Cannot send an empty message", result.Error)
}

func TestDeliver_Non2xxWithUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	result := newTestClient(5*time.Second).Deliver(context.Background(), srv.URL, domain.WirePayload{Content: "x"})

	assert.False(t, result.Success)
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusBadGateway, *result.StatusCode)
	assert.Equal(t, "HTTP 502", result.Error)
}

func TestDeliver_TransportFailure(t *testing.T) {
	// Server started then immediately closed: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := newTestClient(5*time.Second).Deliver(context.Background(), url, domain.WirePayload{Content: "x"})

	assert.False(t, result.Success)
	assert.Nil(t, result.StatusCode, "transport failure must not carry a status code")
	assert.NotEmpty(t, result.Error)
}

func TestDeliver_TimeoutIsTransportFailure(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	result := newTestClient(50*time.Millisecond).Deliver(context.Background(), srv.URL, domain.WirePayload{Content: "x"})

	assert.False(t, result.Success)
	assert.Nil(t, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}
