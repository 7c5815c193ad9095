package claims

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DataSummary reports what the load produced, for operator diagnostics.
type DataSummary struct {
	TotalRecords int      `json:"total_records"`
	TotalDenials int      `json:"total_denials"`
	ColumnsFound []string `json:"columns_found"`
	LoadMessage  string   `json:"load_message"`
}

// AnalysisResult is the combined analytics record returned to the
// transport layer. Sections whose source column was absent are omitted
// rather than failing the whole analysis. All numeric leaves are finite:
// undefined ratios are computed as 0, never NaN.
type AnalysisResult struct {
	TopDeniedCPTs    DimensionAnalysis `json:"top_denied_cpts"`
	PayerAnalysis    DimensionAnalysis `json:"payer_analysis"`
	ProviderAnalysis DimensionAnalysis `json:"provider_analysis"`
	DenialReasons    []ReasonCount     `json:"denial_reasons,omitempty"`
	DenialPatterns   map[string]int    `json:"denial_patterns,omitempty"`
	FinancialImpact  FinancialImpact   `json:"financial_impact"`
	Recommendations  []Recommendation  `json:"recommendations"`
	DataSummary      DataSummary       `json:"data_summary"`
}

// Analyze runs the full analytics pass over an immutable set. Aggregation
// and reason classification are independent pure functions, so they run
// concurrently; recommendations are synthesized from both once they finish.
func Analyze(ctx context.Context, set *ClaimSet, rules []PatternRule) *AnalysisResult {
	var (
		agg      *Aggregation
		patterns map[string]int
		reasons  []ReasonCount
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		agg = Aggregate(set)
		return nil
	})
	g.Go(func() error {
		patterns = ClassifyPatterns(set, rules)
		reasons = CountDenialReasons(set)
		return nil
	})
	// The component functions cannot fail; the group only synchronizes.
	_ = g.Wait()

	return &AnalysisResult{
		TopDeniedCPTs:    agg.CPT,
		PayerAnalysis:    agg.Payer,
		ProviderAnalysis: agg.Provider,
		DenialReasons:    reasons,
		DenialPatterns:   patterns,
		FinancialImpact:  agg.Financial,
		Recommendations:  GenerateRecommendations(agg, patterns),
		DataSummary: DataSummary{
			TotalRecords: set.Len(),
			TotalDenials: set.DenialCount(),
			ColumnsFound: set.Columns,
			LoadMessage:  set.LoadMessage,
		},
	}
}
