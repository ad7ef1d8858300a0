package probe

import (
	"context"
	"net"
	"time"

	"github.com/go-redis/redis"
	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

type redisProbe struct {
	addr     string
	password string
	timeout  time.Duration
}

func NewRedisProbe(cfg *config.Redis, timeout time.Duration) *redisProbe {
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "6379", "port", "redis")
	cfg.Password = helper.ResolveEnv(cfg.Password)

	return &redisProbe{
		addr:     net.JoinHostPort(cfg.Hostname, cfg.Port),
		password: cfg.Password,
		timeout:  timeout,
	}
}

func (r *redisProbe) Exec(_ context.Context) Result {
	client := redis.NewClient(&redis.Options{
		Addr:         r.addr,
		Password:     r.password,
		DialTimeout:  r.timeout,
		ReadTimeout:  r.timeout,
		WriteTimeout: r.timeout,
	})
	defer client.Close()

	start := time.Now()
	if _, err := client.Ping().Result(); err != nil {
		return unhealthyResult(errorCode(err))
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "redis", "status": "alive", "host": r.addr}).Debug()
	return healthyResult(time.Since(start))
}
