package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer recommendations.
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

// Check names reported by Service.Check.
const (
	CheckCache     = "cache"
	CheckEmbedding = "embedding"
	CheckSnapshot  = "snapshot"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache     CachePinger
	embedding EmbeddingChecker
	snapshot  SnapshotReadiness
}

// New creates a Service. cache and embedding can be nil; snapshot is required.
func New(cache CachePinger, embedding EmbeddingChecker, snapshot SnapshotReadiness) *Service {
	return &Service{cache: cache, embedding: embedding, snapshot: snapshot}
}

// Check runs health checks against all components.
// A missing snapshot is Unhealthy; any other failing dependency is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}

	if s.embedding != nil {
		checks[CheckEmbedding] = result(s.embedding.HealthCheck(ctx))
	}

	if s.snapshot.Ready() {
		checks[CheckSnapshot] = CheckOK
	} else {
		checks[CheckSnapshot] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[CheckSnapshot] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
