package probe

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

type mySQLProbe struct {
	dsn     string
	timeout time.Duration
}

func NewMySQLProbe(cfg *config.MySQL, timeout time.Duration) *mySQLProbe {
	cfg.User = helper.ResolveEnv(cfg.User)
	cfg.Password = helper.ResolveEnv(cfg.Password)
	cfg.Hostname = helper.ResolveEnv(cfg.Hostname)
	cfg.Port = helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "3306", "port", "mysql")
	cfg.Database = helper.ResolveEnv(cfg.Database)

	connCfg := mysql.Config{
		User:                 cfg.User,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 net.JoinHostPort(cfg.Hostname, cfg.Port),
		DBName:               cfg.Database,
		Timeout:              timeout,
		AllowNativePasswords: true,
	}

	return &mySQLProbe{
		dsn:     connCfg.FormatDSN(),
		timeout: timeout,
	}
}

func (m *mySQLProbe) Exec(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	db, err := sql.Open("mysql", m.dsn)
	if err != nil {
		return unhealthyResult(err.Error())
	}
	defer db.Close()

	start := time.Now()
	if err := db.PingContext(ctx); err != nil {
		return unhealthyResult(errorCode(err))
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "mysql", "status": "alive"}).Debug()
	return healthyResult(time.Since(start))
}
