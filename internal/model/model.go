// Package model implements the denial probability estimator: categorical
// encoding, a deterministic train/test split, a random-forest classifier,
// and single-claim inference. A trained Predictor is immutable; retraining
// builds a replacement rather than mutating in place.
package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"claimsight/internal/claims"
)

// ErrNoFeatures indicates the claim set carries none of the categorical
// columns the model can learn from.
var ErrNoFeatures = errors.New("no suitable feature columns for model training")

// ModelName identifies the classifier in training metadata.
const ModelName = "random_forest"

// candidateFeatures are the columns considered for training, in fixed
// order. Only those present in the claim set are used.
var candidateFeatures = []string{
	claims.FieldCPTCode,
	claims.FieldInsuranceCompany,
	claims.FieldPhysicianName,
}

// Config configures a training run.
type Config struct {
	Estimators   int
	MaxDepth     int // 0 means unlimited
	TestFraction float64
	Seed         int64
}

// DefaultConfig returns the reference configuration: 100 trees, unlimited
// depth, 80/20 split, seed 42.
func DefaultConfig() Config {
	return Config{
		Estimators:   100,
		MaxDepth:     0,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// TrainResult reports what the model learned. Error is set only when
// training failed and ModelTrained is false.
type TrainResult struct {
	ModelTrained      bool               `json:"model_trained"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	FeaturesUsed      []string           `json:"features_used,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// TrainFailure builds the result reported when training could not run.
func TrainFailure(err error) *TrainResult {
	return &TrainResult{ModelTrained: false, Error: err.Error()}
}

// TrainingInfo carries the model metadata for the transport layer.
// MaxDepth is nil when depth is unlimited.
type TrainingInfo struct {
	ModelName   string  `json:"model_name"`
	NEstimators int     `json:"n_estimators"`
	RandomState int64   `json:"random_state"`
	Accuracy    float64 `json:"accuracy"`
	Criterion   string  `json:"criterion"`
	MaxDepth    *int    `json:"max_depth"`
}

// Prediction is the inference output for one claim-like input.
type Prediction struct {
	DenialProbability float64 `json:"denial_probability"`
	RiskLevel         string  `json:"risk_level"`
}

// Predictor is a trained classifier with its encoding tables and ordered
// feature list. It is safe for concurrent reads.
type Predictor struct {
	features   []string
	encoders   map[string]*EncodingTable
	forest     *forest
	generation string
}

// Generation returns the generation tag of the claim set the predictor was
// trained from.
func (p *Predictor) Generation() string {
	return p.generation
}

// Train fits a forest to predict denial from the set's categorical
// features. The split and every random choice derive from cfg.Seed, so
// identical input always yields identical partitions and accuracy.
func Train(set *claims.ClaimSet, cfg Config, logger *slog.Logger) (*Predictor, *TrainResult, *TrainingInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Estimators <= 0 {
		cfg = DefaultConfig()
	}

	var features []string
	for _, f := range candidateFeatures {
		if set.HasColumn(f) {
			features = append(features, f)
		}
	}
	if len(features) == 0 {
		return nil, nil, nil, ErrNoFeatures
	}
	if set.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("cannot train on an empty claim set")
	}

	// Encoding tables are built from the full training set's observed
	// values; categories unseen here get no code.
	encoders := make(map[string]*EncodingTable, len(features))
	for _, f := range features {
		values := make([]string, set.Len())
		for i, c := range set.Claims {
			values[i] = featureValue(c, f)
		}
		encoders[f] = BuildEncodingTable(values)
	}

	x := make([][]float64, set.Len())
	y := make([]bool, set.Len())
	for i, c := range set.Claims {
		row := make([]float64, len(features))
		for j, f := range features {
			row[j] = float64(encoders[f].Encode(featureValue(c, f)))
		}
		x[i] = row
		y[i] = c.IsDenied()
	}

	trainIdx, testIdx := split(set.Len(), cfg.TestFraction, cfg.Seed)

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]bool, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = x[idx]
		trainY[i] = y[idx]
	}

	f := growForest(trainX, trainY, len(features), forestConfig{
		Trees:    cfg.Estimators,
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
	})

	// Without enough rows for a held-out partition, accuracy is reported
	// over the training rows.
	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	correct := 0
	for _, idx := range evalIdx {
		if (f.predictProb(x[idx]) >= 0.5) == y[idx] {
			correct++
		}
	}
	accuracy := math.Round(float64(correct)/float64(len(evalIdx))*10000) / 10000

	importance := make(map[string]float64, len(features))
	for i, feat := range features {
		importance[feat] = f.importances[i]
	}

	predictor := &Predictor{
		features:   features,
		encoders:   encoders,
		forest:     f,
		generation: set.Generation,
	}

	result := &TrainResult{
		ModelTrained:      true,
		FeatureImportance: importance,
		FeaturesUsed:      features,
	}

	info := &TrainingInfo{
		ModelName:   ModelName,
		NEstimators: cfg.Estimators,
		RandomState: cfg.Seed,
		Accuracy:    accuracy,
		Criterion:   "gini",
	}
	if cfg.MaxDepth > 0 {
		depth := cfg.MaxDepth
		info.MaxDepth = &depth
	}

	logger.Info("prediction model trained",
		slog.Any("features", features),
		slog.Int("train_rows", len(trainIdx)),
		slog.Int("test_rows", len(testIdx)),
		slog.Float64("accuracy", accuracy))

	return predictor, result, info, nil
}

// Predict estimates the denial probability for a claim-like feature map.
// Features absent from the input, and feature values unseen at training
// time, encode to 0.
func (p *Predictor) Predict(input map[string]string) Prediction {
	row := make([]float64, len(p.features))
	for i, f := range p.features {
		row[i] = float64(p.encoders[f].Encode(input[f]))
	}

	prob := p.forest.predictProb(row)
	return Prediction{
		DenialProbability: prob,
		RiskLevel:         riskLevel(prob),
	}
}

// riskLevel buckets a probability: above 0.7 is High, above 0.3 Medium,
// otherwise Low. The boundaries themselves fall in the lower band.
func riskLevel(prob float64) string {
	switch {
	case prob > 0.7:
		return "High"
	case prob > 0.3:
		return "Medium"
	default:
		return "Low"
	}
}

// split shuffles row indices with a seeded RNG and holds out the trailing
// fraction for testing. The test size rounds up, so any set of two or more
// rows holds out at least one. A single row always trains.
func split(n int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	testN := int(math.Ceil(float64(n) * testFraction))
	if testN >= n {
		testN = n - 1
	}

	return perm[testN:], perm[:testN]
}

// featureValue extracts a candidate feature from a claim.
func featureValue(c claims.Claim, feature string) string {
	switch feature {
	case claims.FieldCPTCode:
		return c.CPTCode
	case claims.FieldInsuranceCompany:
		return c.InsuranceCompany
	case claims.FieldPhysicianName:
		return c.PhysicianName
	default:
		return ""
	}
}
