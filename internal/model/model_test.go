package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/claims"
)

// trainingSet builds a set where Acme claims always deny and Beta claims
// never do, big enough to survive the 80/20 split.
func trainingSet() *claims.ClaimSet {
	set := &claims.ClaimSet{
		Generation: "gen-1",
		Columns: []string{
			claims.FieldCPTCode, claims.FieldInsuranceCompany, claims.FieldPhysicianName,
			claims.FieldPaymentAmount, claims.FieldBalance, "is_denied", "total_charge",
		},
	}
	for i := 0; i < 30; i++ {
		set.Claims = append(set.Claims, claims.Claim{
			CPTCode:          fmt.Sprintf("992%02d", i%3),
			InsuranceCompany: "Acme",
			PhysicianName:    "Dr. Lee",
			PaymentAmount:    0,
			Balance:          100,
		})
		set.Claims = append(set.Claims, claims.Claim{
			CPTCode:          fmt.Sprintf("992%02d", i%3),
			InsuranceCompany: "Beta",
			PhysicianName:    "Dr. Kim",
			PaymentAmount:    80,
			Balance:          0,
		})
	}
	return set
}

func TestTrainAndPredict(t *testing.T) {
	predictor, result, info, err := Train(trainingSet(), DefaultConfig(), nil)
	require.NoError(t, err)

	assert.True(t, result.ModelTrained)
	assert.Equal(t, []string{
		claims.FieldCPTCode, claims.FieldInsuranceCompany, claims.FieldPhysicianName,
	}, result.FeaturesUsed)
	assert.Len(t, result.FeatureImportance, 3)

	assert.Equal(t, ModelName, info.ModelName)
	assert.Equal(t, 100, info.NEstimators)
	assert.Equal(t, int64(42), info.RandomState)
	assert.Equal(t, "gini", info.Criterion)
	assert.Nil(t, info.MaxDepth)
	// Labels are perfectly determined by the payer
	assert.GreaterOrEqual(t, info.Accuracy, 0.9)

	denied := predictor.Predict(map[string]string{
		claims.FieldCPTCode:          "99200",
		claims.FieldInsuranceCompany: "Acme",
		claims.FieldPhysicianName:    "Dr. Lee",
	})
	assert.Greater(t, denied.DenialProbability, 0.7)
	assert.Equal(t, "High", denied.RiskLevel)

	paid := predictor.Predict(map[string]string{
		claims.FieldCPTCode:          "99200",
		claims.FieldInsuranceCompany: "Beta",
		claims.FieldPhysicianName:    "Dr. Kim",
	})
	assert.Less(t, paid.DenialProbability, 0.3)
	assert.Equal(t, "Low", paid.RiskLevel)
}

func TestTrainDeterministic(t *testing.T) {
	set := trainingSet()

	p1, _, info1, err := Train(set, DefaultConfig(), nil)
	require.NoError(t, err)
	p2, _, info2, err := Train(set, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, info1.Accuracy, info2.Accuracy)

	input := map[string]string{
		claims.FieldCPTCode:          "99201",
		claims.FieldInsuranceCompany: "Acme",
		claims.FieldPhysicianName:    "Dr. Lee",
	}
	assert.Equal(t, p1.Predict(input), p2.Predict(input))
}

func TestTrainNoFeatures(t *testing.T) {
	set := &claims.ClaimSet{
		Generation: "gen-1",
		Claims:     []claims.Claim{{PaymentAmount: 0, Balance: 10}},
		Columns:    []string{claims.FieldPaymentAmount, claims.FieldBalance, "is_denied", "total_charge"},
	}

	_, _, _, err := Train(set, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestTrainEmptySet(t *testing.T) {
	set := &claims.ClaimSet{
		Generation: "gen-1",
		Columns:    []string{claims.FieldCPTCode, "is_denied", "total_charge"},
	}

	_, _, _, err := Train(set, DefaultConfig(), nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFeatures)
}

func TestTrainMaxDepthReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 4

	_, _, info, err := Train(trainingSet(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, info.MaxDepth)
	assert.Equal(t, 4, *info.MaxDepth)
}

func TestPredictUnseenValueMatchesCodeZero(t *testing.T) {
	predictor, _, _, err := Train(trainingSet(), DefaultConfig(), nil)
	require.NoError(t, err)

	// "Acme" sorts before "Beta" and holds code 0, so an unseen payer
	// scores exactly like Acme
	unseen := predictor.Predict(map[string]string{
		claims.FieldCPTCode:          "99200",
		claims.FieldInsuranceCompany: "Never Seen Mutual",
		claims.FieldPhysicianName:    "Dr. Lee",
	})
	acme := predictor.Predict(map[string]string{
		claims.FieldCPTCode:          "99200",
		claims.FieldInsuranceCompany: "Acme",
		claims.FieldPhysicianName:    "Dr. Lee",
	})
	assert.Equal(t, acme, unseen)
}

func TestRiskLevelBands(t *testing.T) {
	tests := []struct {
		prob float64
		want string
	}{
		{0.0, "Low"},
		{0.3, "Low"},
		{0.31, "Medium"},
		{0.7, "Medium"},
		{0.71, "High"},
		{1.0, "High"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevel(tt.prob), "prob=%v", tt.prob)
	}
}

func TestSplit(t *testing.T) {
	train, test := split(10, 0.2, 42)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)

	// Same seed, same partition
	train2, test2 := split(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	// A single row never ends up entirely held out
	train, test = split(1, 0.9, 42)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestSplitSmallSetsHoldOutOneRow(t *testing.T) {
	// The test size rounds up, so even tiny sets keep a held-out row
	// and accuracy is never measured on training data alone.
	for n := 2; n <= 4; n++ {
		train, test := split(n, 0.2, 42)
		assert.NotEmpty(t, test, "n=%d", n)
		assert.Len(t, train, n-len(test), "n=%d", n)
	}
}
