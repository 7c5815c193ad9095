// Package services holds the session-scoped orchestration layer between
// the HTTP transport and the analytics engine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"claimsight/internal/claims"
	"claimsight/internal/infrastructure"
	"claimsight/internal/ingest"
	"claimsight/internal/model"
)

// AnalyzerService owns one session's claim data and prediction model.
// The current ClaimSet and the model slot live behind a single RWMutex:
// loading a new file replaces the set wholesale and invalidates the model,
// and a predictor trained against a superseded set is never installed.
type AnalyzerService struct {
	logger       *slog.Logger
	modelCfg     model.Config
	patternRules []claims.PatternRule
	metrics      *infrastructure.AnalysisMetrics

	mu        sync.RWMutex
	set       *claims.ClaimSet
	predictor *model.Predictor
}

// NewAnalyzerService creates an analyzer session. metrics may be nil, in
// which case nothing is recorded.
func NewAnalyzerService(logger *slog.Logger, modelCfg model.Config, metrics *infrastructure.AnalysisMetrics) *AnalyzerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzerService{
		logger:       logger.With(slog.String("component", "analyzer_service")),
		modelCfg:     modelCfg,
		patternRules: claims.DefaultPatternRules(),
		metrics:      metrics,
	}
}

// LoadAndAnalyze decodes an uploaded file, normalizes it into a new
// ClaimSet, replaces the session's current set, and runs the full
// analytics pass. The previous set and any model trained from it are
// discarded: a new upload is a full-state replacement.
func (s *AnalyzerService) LoadAndAnalyze(ctx context.Context, data []byte) (*claims.AnalysisResult, error) {
	start := time.Now()

	table, err := ingest.DecodeTable(data, s.logger)
	if err != nil {
		s.recordUploadFailure(ctx)
		return nil, fmt.Errorf("%w: %s", claims.ErrUnreadableInput, err)
	}

	set, err := claims.Normalize(table, s.logger)
	if err != nil {
		s.recordUploadFailure(ctx)
		return nil, err
	}

	s.mu.Lock()
	s.set = set
	s.predictor = nil
	s.mu.Unlock()

	result := claims.Analyze(ctx, set, s.patternRules)

	if s.metrics != nil {
		s.metrics.UploadsTotal.Add(ctx, 1)
		s.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
	}

	s.logger.InfoContext(ctx, "claim file analyzed",
		slog.String("generation", set.Generation),
		slog.Int("records", set.Len()),
		slog.Int("denials", set.DenialCount()),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// Analysis re-runs the analytics pass over the currently loaded set.
func (s *AnalyzerService) Analysis(ctx context.Context) (*claims.AnalysisResult, error) {
	s.mu.RLock()
	set := s.set
	s.mu.RUnlock()

	if set == nil {
		return nil, ErrNoData
	}

	return claims.Analyze(ctx, set, s.patternRules), nil
}

// TrainModel fits a fresh predictor to the current set and installs it.
// Training runs outside the lock; the result is installed only if the set
// has not been replaced meanwhile, so a stale model never lands. On
// failure the previous trained state is kept.
func (s *AnalyzerService) TrainModel(ctx context.Context) (*model.TrainResult, *model.TrainingInfo, error) {
	s.mu.RLock()
	set := s.set
	s.mu.RUnlock()

	if set == nil {
		return nil, nil, ErrNoData
	}

	predictor, result, info, err := model.Train(set, s.modelCfg, s.logger)
	if err != nil {
		s.logger.WarnContext(ctx, "model training failed",
			slog.String("generation", set.Generation),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	s.mu.Lock()
	if s.set != nil && s.set.Generation == predictor.Generation() {
		s.predictor = predictor
	} else {
		err = fmt.Errorf("claim set replaced during training")
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WarnContext(ctx, "trained model discarded",
			slog.String("generation", predictor.Generation()))
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.TrainingsTotal.Add(ctx, 1)
	}

	return result, info, nil
}

// Predict estimates the denial probability for a claim-like feature map.
// Requires a trained model; readers see either the prior predictor or the
// fully installed replacement, never a partial one.
func (s *AnalyzerService) Predict(ctx context.Context, input map[string]string) (*model.Prediction, error) {
	s.mu.RLock()
	predictor := s.predictor
	s.mu.RUnlock()

	if predictor == nil {
		return nil, ErrModelNotTrained
	}

	prediction := predictor.Predict(input)

	if s.metrics != nil {
		s.metrics.PredictionsTotal.Add(ctx, 1)
	}

	s.logger.DebugContext(ctx, "denial prediction served",
		slog.Float64("probability", prediction.DenialProbability),
		slog.String("risk_level", prediction.RiskLevel))

	return &prediction, nil
}

// Loaded reports whether a claim set is currently loaded.
func (s *AnalyzerService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set != nil
}

// ModelTrained reports whether a trained predictor is installed.
func (s *AnalyzerService) ModelTrained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.predictor != nil
}

func (s *AnalyzerService) recordUploadFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.UploadFailures.Add(ctx, 1)
	}
}
