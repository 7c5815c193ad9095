package claims

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFullPass(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", PhysicianName: "Dr. Lee",
			DenialReason: "Missing information", PaymentAmount: 0, Balance: 100},
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", PhysicianName: "Dr. Lee",
			DenialReason: "Paid", PaymentAmount: 50, Balance: 0},
	)
	set.LoadMessage = "Data loaded successfully. Rows: 2, Denials found: 1"

	result := Analyze(context.Background(), set, DefaultPatternRules())

	assert.Equal(t, 2, result.DataSummary.TotalRecords)
	assert.Equal(t, 1, result.DataSummary.TotalDenials)
	assert.Equal(t, set.Columns, result.DataSummary.ColumnsFound)
	assert.Equal(t, set.LoadMessage, result.DataSummary.LoadMessage)

	require.Len(t, result.TopDeniedCPTs.ByVolume, 1)
	assert.Equal(t, "99213", result.TopDeniedCPTs.ByVolume[0].Key)

	require.NotNil(t, result.DenialPatterns)
	assert.Equal(t, 1, result.DenialPatterns["documentation_issues"])

	require.Len(t, result.DenialReasons, 1)
	assert.Equal(t, "Missing information", result.DenialReasons[0].Reason)

	assert.InDelta(t, 66.6667, result.FinancialImpact.RevenueAtRiskPercentage, 0.001)
	assert.NotNil(t, result.Recommendations)
}

func TestAnalyzeOmitsReasonSectionsWithoutColumn(t *testing.T) {
	set := &ClaimSet{
		Generation: "test",
		Claims: []Claim{
			{CPTCode: "99213", PaymentAmount: 0, Balance: 100},
		},
		Columns: []string{FieldCPTCode, FieldPaymentAmount, FieldBalance, "is_denied", "total_charge"},
	}

	result := Analyze(context.Background(), set, DefaultPatternRules())

	assert.Nil(t, result.DenialPatterns)
	assert.Nil(t, result.DenialReasons)

	// The omitted sections must also vanish from the JSON document
	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "denial_patterns")
	assert.NotContains(t, string(encoded), "denial_reasons")
	assert.Contains(t, string(encoded), "financial_impact")
}

func TestAnalyzeDeterministic(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", DenialReason: "coverage lapsed", PaymentAmount: 0, Balance: 60},
		Claim{CPTCode: "99214", InsuranceCompany: "Beta", DenialReason: "modifier invalid", PaymentAmount: 0, Balance: 40},
		Claim{CPTCode: "99215", InsuranceCompany: "Acme", DenialReason: "", PaymentAmount: 30, Balance: 0},
	)

	first := Analyze(context.Background(), set, DefaultPatternRules())
	second := Analyze(context.Background(), set, DefaultPatternRules())
	assert.Equal(t, first, second)
}
