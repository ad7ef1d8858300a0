package probe

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoDBProbe struct {
	uri     string
	host    string
	timeout time.Duration
}

func NewMongoDBProbe(cfg *config.MongoDB, timeout time.Duration) *mongoDBProbe {
	cfg.User = helper.ResolveEnv(cfg.User)
	cfg.Password = helper.ResolveEnv(cfg.Password)
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "27017", "port", "mongodb")
	cfg.Database = helper.ResolveEnv(cfg.Database)

	host := net.JoinHostPort(cfg.Hostname, cfg.Port)

	u := url.URL{
		Scheme: "mongodb",
		Host:   host,
		Path:   cfg.Database,
	}
	if cfg.User != "" && cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	return &mongoDBProbe{
		uri:     u.String(),
		host:    host,
		timeout: timeout,
	}
}

func (m *mongoDBProbe) Exec(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return unhealthyResult(errorCode(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return unhealthyResult(errorCode(err))
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "mongodb", "status": "alive", "host": m.host}).Debug()
	return healthyResult(time.Since(start))
}
