package helper

import (
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ResolveEnv resolves values of the form "ENV:NAME" from the process
// environment. Any other value is returned unchanged.
func ResolveEnv(in string) string {
	if strings.HasPrefix(in, "ENV:") {
		return os.Getenv(in[4:])
	}
	return in
}

func SetDefaultStringIfEmpty(value string, defaultValue string, field string, kind string) string {
	if len(value) == 0 {
		log.WithFields(log.Fields{"kind": kind, "field": field}).Debugf("no value specified, assuming default %q", defaultValue)
		return defaultValue
	}
	return value
}

func ParseDurationWithDefault(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.WithError(err).Warnf("invalid duration %q, assuming default %s", value, defaultValue)
		return defaultValue
	}
	return d
}
