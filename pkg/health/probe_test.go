package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	reasons []Reason
}

func (o *recordingObserver) ObserveProbe(reason Reason, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reasons = append(o.reasons, reason)
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/session", r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		healthy   bool
		wantError string
	}{
		{name: "OK", status: http.StatusOK, healthy: true},
		{name: "NoContent", status: http.StatusNoContent, healthy: true},
		{name: "UnauthorizedStillHealthy", status: http.StatusUnauthorized, healthy: true},
		{name: "Forbidden", status: http.StatusForbidden, wantError: "HTTP 403: Forbidden"},
		{name: "NotFound", status: http.StatusNotFound, wantError: "HTTP 404: Not Found"},
		{name: "ServiceUnavailable", status: http.StatusServiceUnavailable, wantError: "HTTP 503: Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(t, tt.status)

			res := NewProber().Probe(context.Background(), srv.URL, time.Second)

			assert.Equal(t, tt.healthy, res.Healthy)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Greater(t, res.ResponseTime, time.Duration(0))
			if tt.healthy {
				assert.Equal(t, ReasonOK, res.Reason)
				assert.Empty(t, res.Error)
			} else {
				assert.Equal(t, ReasonHTTPStatus, res.Reason)
				assert.Equal(t, tt.wantError, res.Error)
			}
		})
	}
}

func TestProbeTrailingSlash(t *testing.T) {
	srv := statusServer(t, http.StatusOK)

	res := NewProber().Probe(context.Background(), srv.URL+"/", time.Second)
	assert.True(t, res.Healthy)
}

func TestProbeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	timeout := 150 * time.Millisecond
	start := time.Now()
	res := NewProber().Probe(context.Background(), srv.URL, timeout)
	elapsed := time.Since(start)

	assert.False(t, res.Healthy)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.Equal(t, "timeout after 150ms", res.Error)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second)
}

func TestProbeUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res := NewProber().Probe(context.Background(), "http://"+addr, time.Second)

	assert.False(t, res.Healthy)
	assert.Equal(t, ReasonUnreachable, res.Reason)
	assert.NotEmpty(t, res.Error)
}

func TestProbeParentCancelled(t *testing.T) {
	srv := statusServer(t, http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewProber().Probe(ctx, srv.URL, time.Second)
	assert.False(t, res.Healthy)
	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, "aborted", res.Error)
}

func TestProbeInvalidURL(t *testing.T) {
	res := NewProber().Probe(context.Background(), "http://[::1", time.Second)
	assert.False(t, res.Healthy)
	assert.Equal(t, ReasonUnreachable, res.Reason)
}

func TestProbeObserver(t *testing.T) {
	srv := statusServer(t, http.StatusOK)
	obs := &recordingObserver{}

	p := NewProber(WithObserver(obs))
	p.Probe(context.Background(), srv.URL, time.Second)
	p.Probe(context.Background(), "http://[::1", time.Second)

	assert.Equal(t, []Reason{ReasonOK, ReasonUnreachable}, obs.reasons)
}

func TestIsHealthyStatus(t *testing.T) {
	assert.True(t, IsHealthyStatus(200))
	assert.True(t, IsHealthyStatus(299))
	assert.True(t, IsHealthyStatus(401))
	assert.False(t, IsHealthyStatus(302))
	assert.False(t, IsHealthyStatus(403))
	assert.False(t, IsHealthyStatus(500))
}
