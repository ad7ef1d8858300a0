package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type ReportStatus string

const (
	ReportHealthy  ReportStatus = "healthy"
	ReportDegraded ReportStatus = "degraded"
)

// Probe is a single reachability check against one external dependency.
// Exec never returns an error; every failure mode is folded into an
// unhealthy Result.
type Probe interface {
	Exec(ctx context.Context) Result
}

type Result struct {
	Status       Status `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

func healthyResult(elapsed time.Duration) Result {
	return Result{
		Status:       StatusHealthy,
		ResponseTime: elapsed.Round(time.Millisecond).String(),
	}
}

func unhealthyResult(code string) Result {
	return Result{
		Status: StatusUnhealthy,
		Error:  code,
	}
}

type ServiceResult struct {
	Name string
	Result
}

// Report is the combined health status across all probes, computed fresh
// per request. Services keep the configuration order of their targets.
type Report struct {
	Status    ReportStatus
	Timestamp time.Time
	Services  []ServiceResult
}

// Get returns the result for the named service, or nil if unknown.
func (r *Report) Get(name string) *Result {
	for i := range r.Services {
		if r.Services[i].Name == name {
			return &r.Services[i].Result
		}
	}
	return nil
}

// MarshalJSON emits the services object in configuration order instead of
// the sorted-key order encoding/json would use for a map.
func (r *Report) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteString(`{"status":`)

	if err := encodeTo(&buf, r.Status); err != nil {
		return nil, err
	}

	buf.WriteString(`,"timestamp":`)
	if err := encodeTo(&buf, r.Timestamp.Format(time.RFC3339)); err != nil {
		return nil, err
	}

	buf.WriteString(`,"services":{`)
	for i := range r.Services {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeTo(&buf, r.Services[i].Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeTo(&buf, r.Services[i].Result); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

func encodeTo(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
