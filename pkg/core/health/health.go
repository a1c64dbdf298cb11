// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     health
// Description: Health check registry and common checks for the services
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Status represents the health status of a service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Duration  time.Duration          `json:"duration"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Checker is an interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// CheckFunc is a function type that implements Checker
type CheckFunc func(ctx context.Context) CheckResult

// Check implements the Checker interface
func (f CheckFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Name returns a default name
func (f CheckFunc) Name() string {
	return "unknown"
}

// NamedCheckFunc wraps a check function with a name
type NamedCheckFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &NamedCheckFunc{name: name, fn: fn}
}

// Name returns the checker name
func (c *NamedCheckFunc) Name() string {
	return c.name
}

// Check runs the health check
func (c *NamedCheckFunc) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// Registry manages multiple health checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	service  string
	version  string
	startAt  time.Time
}

// NewRegistry creates a new health check registry
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		service:  service,
		version:  version,
		startAt:  time.Now(),
	}
}

// Register adds a checker to the registry
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds a check function to the registry
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Check runs all health checks concurrently and returns the overall status.
// Checks are reported in name order.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &Report{
		Service:   r.service,
		Version:   r.version,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, 0, len(r.checkers)),
	}

	var wg sync.WaitGroup
	results := make(chan CheckResult, len(r.checkers))

	for _, checker := range r.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			results <- result
		}(checker)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	overallStatus := StatusHealthy
	for result := range results {
		report.Checks = append(report.Checks, result)
		switch result.Status {
		case StatusUnhealthy:
			overallStatus = StatusUnhealthy
		case StatusDegraded:
			if overallStatus != StatusUnhealthy {
				overallStatus = StatusDegraded
			}
		}
	}

	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = overallStatus
	return report
}

// CheckWithTimeout runs all health checks with a timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report represents the overall health report
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// String returns a string representation of the report
func (r *Report) String() string {
	return fmt.Sprintf("Service: %s, Status: %s, Uptime: %v, Checks: %d",
		r.Service, r.Status, r.Uptime, len(r.Checks))
}

// Common health checks

// TCPCheck creates a TCP connectivity check
func TCPCheck(name, address string, timeout time.Duration) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Details: map[string]interface{}{"address": address},
		}

		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		conn.Close()

		result.Status = StatusHealthy
		result.Message = "TCP check passed"
		return result
	})
}

// HTTPCheck creates an HTTP endpoint check; any 2xx answer is healthy
func HTTPCheck(name, url string, timeout time.Duration) Checker {
	client := &http.Client{Timeout: timeout}
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Details: map[string]interface{}{"url": url},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		resp, err := client.Do(req)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		resp.Body.Close()

		result.Details["status_code"] = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			result.Status = StatusUnhealthy
			result.Message = resp.Status
			return result
		}
		result.Status = StatusHealthy
		result.Message = "HTTP check passed"
		return result
	})
}

// GRPCCheck queries the standard gRPC health service at address
func GRPCCheck(name, address string, timeout time.Duration) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Details: map[string]interface{}{"address": address},
		}

		conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}

		result.Details["serving_status"] = resp.Status.String()
		if resp.Status != healthpb.HealthCheckResponse_SERVING {
			result.Status = StatusDegraded
			result.Message = "gRPC service not serving"
			return result
		}
		result.Status = StatusHealthy
		result.Message = "gRPC check passed"
		return result
	})
}

// Pinger is implemented by *sql.DB and similar handles
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck reports unhealthy when p cannot be pinged
func PingCheck(name string, p Pinger) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := p.PingContext(ctx); err != nil {
			return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error()}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "ping ok"}
	})
}

// ProbeCheck runs probe and compares its output with want. A mismatch is
// reported as degraded, an error as unhealthy.
func ProbeCheck(name string, probe func(ctx context.Context) (string, error), want string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		got, err := probe(ctx)
		switch {
		case err != nil:
			return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error()}
		case got != want:
			return CheckResult{
				Name:    name,
				Status:  StatusDegraded,
				Message: "unexpected probe output",
				Details: map[string]interface{}{"got": got, "want": want},
			}
		default:
			return CheckResult{Name: name, Status: StatusHealthy, Message: "probe ok"}
		}
	})
}

// AlwaysHealthy returns a checker that always reports healthy
func AlwaysHealthy(name string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		return CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Message: "Always healthy",
		}
	})
}
