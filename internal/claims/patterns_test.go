package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPatterns(t *testing.T) {
	set := testSet(
		Claim{DenialReason: "Missing information on form", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "No prior AUTHORIZATION obtained", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "Exceeds fee schedule allowable", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "paid in full", PaymentAmount: 50, Balance: 0},
	)

	counts := ClassifyPatterns(set, DefaultPatternRules())
	require.NotNil(t, counts)

	assert.Equal(t, 1, counts["documentation_issues"])
	assert.Equal(t, 1, counts["authorization_issues"])
	assert.Equal(t, 1, counts["fee_schedule_issues"])
	assert.Equal(t, 0, counts["coding_issues"])
	assert.Equal(t, 0, counts["eligibility_issues"])
}

func TestClassifyPatternsOnlyDeniedClaims(t *testing.T) {
	set := testSet(
		// Not denied: payment is nonzero
		Claim{DenialReason: "documentation incomplete", PaymentAmount: 20, Balance: 30},
	)

	counts := ClassifyPatterns(set, DefaultPatternRules())
	assert.Equal(t, 0, counts["documentation_issues"])
}

func TestClassifyPatternsMultipleCategories(t *testing.T) {
	// One reason can land in more than one category
	set := testSet(
		Claim{DenialReason: "documentation missing, no authorization", PaymentAmount: 0, Balance: 10},
	)

	counts := ClassifyPatterns(set, DefaultPatternRules())
	assert.Equal(t, 1, counts["documentation_issues"])
	assert.Equal(t, 1, counts["authorization_issues"])
}

func TestClassifyPatternsNoReasonColumn(t *testing.T) {
	set := &ClaimSet{
		Claims:  []Claim{{PaymentAmount: 0, Balance: 10}},
		Columns: []string{FieldCPTCode, "is_denied", "total_charge"},
	}

	assert.Nil(t, ClassifyPatterns(set, DefaultPatternRules()))
	assert.Nil(t, CountDenialReasons(set))
}

func TestCountDenialReasons(t *testing.T) {
	set := testSet(
		Claim{DenialReason: "Missing information", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "No coverage", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "Missing information", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "Paid", PaymentAmount: 50, Balance: 0},
	)

	counts := CountDenialReasons(set)
	require.Len(t, counts, 2)
	assert.Equal(t, ReasonCount{Reason: "Missing information", Count: 2}, counts[0])
	assert.Equal(t, ReasonCount{Reason: "No coverage", Count: 1}, counts[1])
}

func TestCountDenialReasonsTieOrder(t *testing.T) {
	set := testSet(
		Claim{DenialReason: "beta", PaymentAmount: 0, Balance: 10},
		Claim{DenialReason: "alpha", PaymentAmount: 0, Balance: 10},
	)

	counts := CountDenialReasons(set)
	require.Len(t, counts, 2)
	assert.Equal(t, "beta", counts[0].Reason)
	assert.Equal(t, "alpha", counts[1].Reason)
}
