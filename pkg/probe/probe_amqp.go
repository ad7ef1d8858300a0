package probe

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const defaultVirtualHost = "/"

type amqpProbe struct {
	url     string
	host    string
	timeout time.Duration
}

func NewAmqpProbe(cfg *config.Amqp, timeout time.Duration) *amqpProbe {
	cfg.User = helper.ResolveEnv(cfg.User)
	cfg.Password = helper.ResolveEnv(cfg.Password)
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "5672", "port", "amqp")
	cfg.VirtualHost = helper.ResolveEnv(cfg.VirtualHost)
	if cfg.VirtualHost == "" {
		cfg.VirtualHost = defaultVirtualHost
	}

	host := net.JoinHostPort(cfg.Hostname, cfg.Port)

	u := url.URL{
		Scheme: "amqp",
		Host:   host,
		Path:   cfg.VirtualHost,
	}
	if cfg.User != "" && cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	return &amqpProbe{
		url:     u.String(),
		host:    host,
		timeout: timeout,
	}
}

func (a *amqpProbe) Exec(_ context.Context) Result {
	start := time.Now()

	conn, err := amqp.DialConfig(a.url, amqp.Config{
		Dial: amqp.DefaultDial(a.timeout),
	})
	if err != nil {
		return unhealthyResult(errorCode(err))
	}
	defer conn.Close()

	log.WithFields(log.Fields{"kind": "probe", "name": "amqp", "status": "alive", "host": a.host}).Debug()
	return healthyResult(time.Since(start))
}
