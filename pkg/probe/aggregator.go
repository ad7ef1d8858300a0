package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 5 * time.Second

	// selfTarget is the synthetic entry representing this service itself;
	// answering the request proves it is reachable.
	selfTarget = "api"
)

type Target struct {
	Name  string
	Probe Probe
}

// Aggregator runs all configured probes concurrently and folds their
// results into a single report. It holds no state between runs.
type Aggregator struct {
	targets []Target
}

func NewAggregator(cfg *config.Config) (*Aggregator, error) {
	targets := make([]Target, 0, len(cfg.Probes))

	for i := range cfg.Probes {
		p, err := buildProbe(&cfg.Probes[i])
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{Name: cfg.Probes[i].Name, Probe: p})
	}

	return &Aggregator{targets: targets}, nil
}

func buildProbe(cfg *config.Probe) (Probe, error) {
	timeout := helper.ParseDurationWithDefault(cfg.Timeout, defaultTimeout)

	switch {
	case cfg.HTTP != nil:
		return NewHTTPProbe(cfg.HTTP, timeout), nil
	case cfg.TCP != nil:
		return NewTCPProbe(cfg.TCP, timeout), nil
	case cfg.Container != nil:
		return NewContainerProbe(cfg.Container, timeout), nil
	case cfg.Redis != nil:
		return NewRedisProbe(cfg.Redis, timeout), nil
	case cfg.MySQL != nil:
		return NewMySQLProbe(cfg.MySQL, timeout), nil
	case cfg.MongoDB != nil:
		return NewMongoDBProbe(cfg.MongoDB, timeout), nil
	case cfg.Amqp != nil:
		return NewAmqpProbe(cfg.Amqp, timeout), nil
	}

	return nil, fmt.Errorf("probe %q has no target configured", cfg.Name)
}

// Run executes all probes as independent goroutines and waits for all of
// them. There is no outer timeout: every probe bounds itself, so the
// report arrives within max(timeout_i) plus a small margin, not the sum.
func (a *Aggregator) Run(ctx context.Context) *Report {
	results := make([]Result, len(a.targets))

	wg := sync.WaitGroup{}
	for i := range a.targets {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i] = execSafely(ctx, a.targets[i])
		}(i)
	}
	wg.Wait()

	report := &Report{
		Status:    ReportHealthy,
		Timestamp: time.Now(),
		Services:  make([]ServiceResult, 0, len(a.targets)+1),
	}
	report.Services = append(report.Services, ServiceResult{Name: selfTarget, Result: healthyResult(0)})

	for i := range a.targets {
		report.Services = append(report.Services, ServiceResult{Name: a.targets[i].Name, Result: results[i]})
		if results[i].Status != StatusHealthy {
			report.Status = ReportDegraded
		}
	}

	return report
}

// execSafely shields the aggregator from misbehaving probes: a panic is
// folded into an unhealthy result like any other failure.
func execSafely(ctx context.Context, t Target) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"kind": "probe", "name": t.Name}).Errorf("probe panicked: %v", r)
			res = unhealthyResult(fmt.Sprintf("probe panicked: %v", r))
		}
	}()

	return t.Probe.Exec(ctx)
}
