package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpProbeFor(t *testing.T, target string, timeout time.Duration) *httpProbe {
	t.Helper()

	u, err := url.Parse(target)
	require.NoError(t, err)

	cfg := config.HTTPGet{Scheme: u.Scheme, Path: u.Path}
	cfg.Hostname = u.Hostname()
	cfg.Port = u.Port()

	return NewHTTPProbe(&cfg, timeout)
}

func TestHTTPProbeHealthyOnAnyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down for maintenance"))
	}))
	defer srv.Close()

	res := httpProbeFor(t, srv.URL, time.Second).Exec(context.Background())

	assert.Equal(t, StatusHealthy, res.Status)
	assert.NotEmpty(t, res.ResponseTime)
	assert.Empty(t, res.Error)
}

func TestHTTPProbeConnectionRefused(t *testing.T) {
	// nothing listens on this port; reserve and close it first
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res := httpProbeFor(t, addr, time.Second).Exec(context.Background())

	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "ECONNREFUSED", res.Error)
	assert.Empty(t, res.ResponseTime)
}

func TestHTTPProbeTimesOutAtConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	timeout := 200 * time.Millisecond
	start := time.Now()
	res := httpProbeFor(t, srv.URL, timeout).Exec(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "TIMEOUT", res.Error)
	assert.Less(t, elapsed, timeout+time.Second, "probe must abort at the timeout, not hang")
}
