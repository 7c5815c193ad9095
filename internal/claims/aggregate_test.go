package claims

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(cs ...Claim) *ClaimSet {
	return &ClaimSet{
		Generation: "test",
		Claims:     cs,
		Columns: []string{
			FieldCPTCode, FieldInsuranceCompany, FieldPhysicianName,
			FieldPaymentAmount, FieldBalance, FieldDenialReason,
			"is_denied", "total_charge",
		},
	}
}

func TestAggregateTwoClaimExample(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", PhysicianName: "Dr. Lee", PaymentAmount: 0, Balance: 100},
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", PhysicianName: "Dr. Lee", PaymentAmount: 50, Balance: 0},
	)

	agg := Aggregate(set)

	require.Len(t, agg.CPT.ByRate, 1)
	row := agg.CPT.ByRate[0]
	assert.Equal(t, "99213", row.Key)
	assert.Equal(t, 2, row.TotalClaims)
	assert.Equal(t, 1, row.Denials)
	assert.Equal(t, 0.5, row.DenialRate)
	assert.Equal(t, 100.0, row.TotalBalance)
	assert.Equal(t, 50.0, row.TotalPayments)

	fin := agg.Financial
	assert.Equal(t, 100.0, fin.TotalDeniedAmount)
	assert.Equal(t, 150.0, fin.TotalRevenue)
	assert.Equal(t, 0.5, fin.OverallDenialRate)
	assert.InDelta(t, 66.6667, fin.RevenueAtRiskPercentage, 0.001)
}

func TestAggregateIdempotent(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", InsuranceCompany: "Acme", PaymentAmount: 0, Balance: 100},
		Claim{CPTCode: "99214", InsuranceCompany: "Beta", PaymentAmount: 80, Balance: 0},
		Claim{CPTCode: "99213", InsuranceCompany: "Beta", PaymentAmount: 0, Balance: 40},
	)

	first := Aggregate(set)
	second := Aggregate(set)
	assert.Equal(t, first, second)
}

func TestAggregateByVolumeExcludesZeroDenialGroups(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", PaymentAmount: 0, Balance: 100},
		Claim{CPTCode: "99214", PaymentAmount: 80, Balance: 0},
	)

	agg := Aggregate(set)

	require.Len(t, agg.CPT.ByVolume, 1)
	assert.Equal(t, "99213", agg.CPT.ByVolume[0].Key)

	// ByRate keeps every group, denied or not
	assert.Len(t, agg.CPT.ByRate, 2)
}

func TestAggregateTieBreakFirstEncounter(t *testing.T) {
	// Both CPTs have one denial: the first one seen must rank first
	set := testSet(
		Claim{CPTCode: "99215", PaymentAmount: 0, Balance: 10},
		Claim{CPTCode: "99211", PaymentAmount: 0, Balance: 10},
	)

	agg := Aggregate(set)

	require.Len(t, agg.CPT.ByVolume, 2)
	assert.Equal(t, "99215", agg.CPT.ByVolume[0].Key)
	assert.Equal(t, "99211", agg.CPT.ByVolume[1].Key)
}

func TestAggregateTopTenCap(t *testing.T) {
	var cs []Claim
	for i := 0; i < 14; i++ {
		cs = append(cs, Claim{
			CPTCode:       fmt.Sprintf("992%02d", i),
			PaymentAmount: 0,
			Balance:       float64(10 + i),
		})
	}
	agg := Aggregate(testSet(cs...))

	assert.Len(t, agg.CPT.ByVolume, 10)
	assert.Len(t, agg.CPT.ByRate, 10)
}

func TestAggregateEmptySet(t *testing.T) {
	agg := Aggregate(testSet())

	assert.Empty(t, agg.CPT.ByVolume)
	assert.Empty(t, agg.CPT.ByRate)
	assert.Equal(t, 0.0, agg.Financial.OverallDenialRate)
	assert.Equal(t, 0.0, agg.Financial.RevenueAtRiskPercentage)
}

func TestAggregateZeroRevenueNoNaN(t *testing.T) {
	// Denied claims with zero balance produce zero revenue; the ratio
	// must come out 0, not NaN
	set := testSet(
		Claim{CPTCode: "99213", PaymentAmount: 0, Balance: 0},
	)
	agg := Aggregate(set)

	assert.Equal(t, 0.0, agg.Financial.TotalRevenue)
	assert.Equal(t, 0.0, agg.Financial.RevenueAtRiskPercentage)
}

func TestAggregateNegativeAmountsPassThrough(t *testing.T) {
	set := testSet(
		Claim{CPTCode: "99213", PaymentAmount: -50, Balance: 100},
		Claim{CPTCode: "99213", PaymentAmount: 0, Balance: 80},
	)
	agg := Aggregate(set)

	require.Len(t, agg.CPT.ByRate, 1)
	assert.Equal(t, -50.0, agg.CPT.ByRate[0].TotalPayments)
	assert.Equal(t, 180.0, agg.CPT.ByRate[0].TotalBalance)
}
