package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported by Check.
const (
	ComponentSearch  = "search"
	ComponentCatalog = "catalog"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	search  Pinger
	catalog Pinger
}

// New creates a Service. catalog can be nil.
func New(search, catalog Pinger) *Service {
	return &Service{search: search, catalog: catalog}
}

// Check pings every component. The search backend is required for queries,
// so its failure makes the service unhealthy; a catalog failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{ComponentSearch: ping(ctx, s.search)}
	if s.catalog != nil {
		checks[ComponentCatalog] = ping(ctx, s.catalog)
	}

	status := Healthy
	switch {
	case checks[ComponentSearch] == CheckError:
		status = Unhealthy
	case checks[ComponentCatalog] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
