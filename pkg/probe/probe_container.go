package probe

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	log "github.com/sirupsen/logrus"
)

type containerProbe struct {
	name    string
	timeout time.Duration
}

func NewContainerProbe(cfg *config.Container, timeout time.Duration) *containerProbe {
	return &containerProbe{
		name:    helper.ResolveEnv(cfg.Name),
		timeout: timeout,
	}
}

// Exec asks the local container runtime whether the named container is
// running. The check is local, so the reported response time is always
// zero; the timeout only bounds the runtime call itself.
func (c *containerProbe) Exec(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "docker", "inspect", "-f", "{{.State.Running}}", c.name).Output()
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return unhealthyResult("container not found or not running")
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "container", "status": "alive", "container": c.name}).Debug()
	return healthyResult(0)
}
