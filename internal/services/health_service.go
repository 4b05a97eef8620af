package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"bikepulse/pkg/contracts"
	"bikepulse/pkg/contracts/domain"
)

// DatasetProvider reports the bounds of the loaded dataset.
type DatasetProvider interface {
	Bounds(ctx context.Context) domain.DateRange
}

// ConnectionCounter reports the number of open WebSocket clients.
type ConnectionCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   DatasetProvider
	clients   ConnectionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service. clients may be nil when no
// WebSocket hub is running.
func NewHealthService(dataset DatasetProvider, clients ConnectionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime))

	return &HealthService{
		version:   contracts.Version,
		dataset:   dataset,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset"] = hs.checkDatasetHealth(ctx)
	status.Services["websocket"] = hs.checkWebSocketHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// VersionResponse is the body of the version endpoint.
type VersionResponse struct {
	contracts.VersionInfo
	StartTime string  `json:"start_time"`
	Uptime    float64 `json:"uptime"`
}

// Version returns version information
func (hs *HealthService) Version() VersionResponse {
	return VersionResponse{
		VersionInfo: contracts.GetVersionInfo(),
		StartTime:   hs.startTime.Format(time.RFC3339),
		Uptime:      time.Since(hs.startTime).Seconds(),
	}
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset not loaded",
		}
	}

	bounds := hs.dataset.Bounds(ctx)
	if bounds.RecordCount == 0 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset is empty",
		}
	}

	return ServiceHealth{
		Status: "ready",
		Message: fmt.Sprintf("%d records from %s to %s", bounds.RecordCount,
			bounds.MinDate.Format(domain.DateLayout), bounds.MaxDate.Format(domain.DateLayout)),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{
			Status:  "ready",
			Message: "WebSocket hub disabled",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
