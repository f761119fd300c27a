package health

import (
	"context"
	"sync"
	"time"
)

// Status is the aggregated health status.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is a single component outcome.
type CheckResult string

const (
	CheckOK            CheckResult = "ok"
	CheckError         CheckResult = "error"
	CheckNotConfigured CheckResult = "not_configured"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Components to check. Nil providers are reported as not configured;
// a nil Indexes skips that check.
type Components struct {
	Database   DBPinger
	Indexes    IndexChecker
	Embedding  ProviderChecker
	Completion ProviderChecker
}

// Service coordinates health checks.
type Service struct {
	c       Components
	timeout time.Duration
}

// New creates a Service. Each check gets its own timeout.
func New(c Components, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{c: c, timeout: timeout}
}

// Check runs all checks concurrently. An unreachable database is Unhealthy;
// any other failure or missing provider is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	type probe struct {
		name string
		fn   func(context.Context) error
	}
	probes := []probe{{"database", s.c.Database.Ping}}
	if s.c.Indexes != nil {
		probes = append(probes, probe{"indexes", s.c.Indexes.Ready})
	}

	checks := make(map[string]CheckResult, 4)
	for name, p := range map[string]ProviderChecker{"embedding": s.c.Embedding, "completion": s.c.Completion} {
		if p == nil {
			checks[name] = CheckNotConfigured
			continue
		}
		probes = append(probes, probe{name, p.HealthCheck})
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range probes {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := p.fn(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[p.name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks}
}
