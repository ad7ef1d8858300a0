package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

type httpProbe struct {
	url     string
	timeout time.Duration
}

func NewHTTPProbe(cfg *config.HTTPGet, timeout time.Duration) *httpProbe {
	cfg.Scheme = helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Scheme), "http", "scheme", "http")
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.ResolveEnv(cfg.Port)
	cfg.Path = helper.ResolveEnv(cfg.Path)

	host := cfg.Hostname
	if cfg.Port != "" {
		host = net.JoinHostPort(cfg.Hostname, cfg.Port)
	}

	u := url.URL{
		Scheme: cfg.Scheme,
		Host:   host,
		Path:   cfg.Path,
	}

	return &httpProbe{
		url:     u.String(),
		timeout: timeout,
	}
}

// Exec issues a GET against the target. Any response counts as healthy,
// regardless of status code; this is a reachability check, not a
// correctness check.
func (h *httpProbe) Exec(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return unhealthyResult(err.Error())
	}

	start := time.Now()

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return unhealthyResult(errorCode(err))
	}
	defer res.Body.Close()

	// drain before measuring so keep-alive connections can be reused
	_, _ = io.Copy(io.Discard, res.Body)
	elapsed := time.Since(start)

	log.WithFields(log.Fields{"kind": "probe", "name": "http", "status": "alive", "host": h.url}).Debug()
	return healthyResult(elapsed)
}
