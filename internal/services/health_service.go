package services

import (
	"context"
	"time"

	"claimsight/internal/infrastructure"
)

// HealthService reports liveness and readiness for the service.
type HealthService struct {
	analyzer  *AnalyzerService
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService(analyzer *AnalyzerService) *HealthService {
	return &HealthService{
		analyzer:  analyzer,
		startedAt: time.Now(),
	}
}

// HealthCheck reports overall service health.
func (s *HealthService) HealthCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":        "healthy",
		"uptime":        time.Since(s.startedAt).String(),
		"data_loaded":   s.analyzer.Loaded(),
		"model_trained": s.analyzer.ModelTrained(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
}

// LivenessCheck reports that the process is serving requests.
func (s *HealthService) LivenessCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"status": "alive"}
}

// Version returns build identification.
func (s *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"name":    infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
	}
}
