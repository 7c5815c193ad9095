package claims

import "sort"

// topGroupLimit caps the ranked views per dimension.
const topGroupLimit = 10

// AggregateRow holds denial and financial statistics for one grouping key.
type AggregateRow struct {
	Key           string  `json:"key"`
	Denials       int     `json:"denials"`
	TotalClaims   int     `json:"total_claims"`
	DenialRate    float64 `json:"denial_rate"`
	TotalBalance  float64 `json:"total_balance"`
	TotalPayments float64 `json:"total_payments"`
}

// DimensionAnalysis carries the two ranked views for one grouping
// dimension. ByVolume ranks groups with at least one denial by denial
// count; ByRate ranks all groups by denial rate. Ties keep the
// first-encountered group first, and both views hold at most ten entries.
type DimensionAnalysis struct {
	ByVolume []AggregateRow `json:"by_volume"`
	ByRate   []AggregateRow `json:"by_rate"`
}

// FinancialImpact summarizes the money tied up in denials across the set.
type FinancialImpact struct {
	TotalDeniedAmount       float64 `json:"total_denied_amount"`
	TotalRevenue            float64 `json:"total_revenue"`
	OverallDenialRate       float64 `json:"overall_denial_rate"`
	RevenueAtRiskPercentage float64 `json:"revenue_at_risk_percentage"`
}

// Aggregation is the full output of one aggregation pass.
type Aggregation struct {
	CPT       DimensionAnalysis
	Payer     DimensionAnalysis
	Provider  DimensionAnalysis
	Financial FinancialImpact
}

// Aggregate computes denial-rate and financial statistics grouped by CPT
// code, payer, and provider, plus the global financial impact. It is a pure
// function of the set: re-running it yields identical results.
func Aggregate(set *ClaimSet) *Aggregation {
	agg := &Aggregation{
		CPT:      groupBy(set, func(c Claim) string { return c.CPTCode }),
		Payer:    groupBy(set, func(c Claim) string { return c.InsuranceCompany }),
		Provider: groupBy(set, func(c Claim) string { return c.PhysicianName }),
	}

	var deniedBalance, totalCharge float64
	denials := 0
	for _, c := range set.Claims {
		totalCharge += c.TotalCharge()
		if c.IsDenied() {
			denials++
			deniedBalance += c.Balance
		}
	}

	agg.Financial = FinancialImpact{
		TotalDeniedAmount: deniedBalance,
		TotalRevenue:      totalCharge,
	}
	if set.Len() > 0 {
		agg.Financial.OverallDenialRate = float64(denials) / float64(set.Len())
	}
	if totalCharge > 0 {
		agg.Financial.RevenueAtRiskPercentage = 100 * deniedBalance / totalCharge
	}

	return agg
}

// groupBy folds the set into per-key aggregate rows in first-encounter
// order, then derives the two ranked views.
func groupBy(set *ClaimSet, key func(Claim) string) DimensionAnalysis {
	index := make(map[string]int)
	var rows []AggregateRow

	for _, c := range set.Claims {
		k := key(c)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, AggregateRow{Key: k})
		}

		rows[i].TotalClaims++
		rows[i].TotalBalance += c.Balance
		rows[i].TotalPayments += c.PaymentAmount
		if c.IsDenied() {
			rows[i].Denials++
		}
	}

	for i := range rows {
		if rows[i].TotalClaims > 0 {
			rows[i].DenialRate = float64(rows[i].Denials) / float64(rows[i].TotalClaims)
		}
	}

	byVolume := make([]AggregateRow, 0, len(rows))
	for _, r := range rows {
		if r.Denials > 0 {
			byVolume = append(byVolume, r)
		}
	}
	sort.SliceStable(byVolume, func(i, j int) bool {
		return byVolume[i].Denials > byVolume[j].Denials
	})

	byRate := make([]AggregateRow, len(rows))
	copy(byRate, rows)
	sort.SliceStable(byRate, func(i, j int) bool {
		return byRate[i].DenialRate > byRate[j].DenialRate
	})

	return DimensionAnalysis{
		ByVolume: truncate(byVolume, topGroupLimit),
		ByRate:   truncate(byRate, topGroupLimit),
	}
}

func truncate(rows []AggregateRow, limit int) []AggregateRow {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
