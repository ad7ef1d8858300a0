package probe

import (
	"context"
	"net"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

type tcpProbe struct {
	addr    string
	timeout time.Duration
}

func NewTCPProbe(cfg *config.TCP, timeout time.Duration) *tcpProbe {
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.ResolveEnv(cfg.Port)

	return &tcpProbe{
		addr:    net.JoinHostPort(cfg.Hostname, cfg.Port),
		timeout: timeout,
	}
}

// Exec attempts a raw connection and closes it immediately on success.
// No payload is exchanged; this only answers "is something listening".
func (t *tcpProbe) Exec(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	dialer := net.Dialer{}
	start := time.Now()

	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return unhealthyResult(errorCode(err))
	}
	elapsed := time.Since(start)
	_ = conn.Close()

	log.WithFields(log.Fields{"kind": "probe", "name": "tcp", "status": "alive", "host": t.addr}).Debug()
	return healthyResult(elapsed)
}
