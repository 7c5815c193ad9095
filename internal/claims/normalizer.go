package claims

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"claimsight/internal/ingest"
)

// fieldAliases maps each canonical field to its accepted source column
// names, in priority order. The first alias found in the header row wins.
var fieldAliases = []struct {
	Field   string
	Aliases []string
}{
	{FieldCPTCode, []string{"cpt", "procedure_code", "cpt_code"}},
	{FieldInsuranceCompany, []string{"insurance", "payer", "insurance_company"}},
	{FieldPhysicianName, []string{"physician", "provider", "doctor", "physician_name"}},
	{FieldPaymentAmount, []string{"payment", "paid_amount", "payment_amount"}},
	{FieldBalance, []string{"balance", "outstanding", "balance_due"}},
	{FieldDenialReason, []string{"denial_reason", "reason", "denial_code", "reason_code"}},
}

// Normalize maps a raw table with variant column names into a canonical
// ClaimSet. Missing text fields default to "Unknown"; numeric fields coerce
// unparseable or missing cells to 0 and pass negative values through.
func Normalize(table *ingest.RawTable, logger *slog.Logger) (*ClaimSet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if table == nil {
		return nil, ErrUnreadableInput
	}
	if table.Empty() {
		return nil, ErrEmptyInput
	}

	// Resolve each canonical field to a source column index once.
	headerIndex := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		if _, seen := headerIndex[h]; !seen {
			headerIndex[h] = i
		}
	}

	fieldIndex := make(map[string]int, len(fieldAliases))
	resolved := make(map[int]bool, len(fieldAliases))
	var columns []string
	for _, fa := range fieldAliases {
		for _, alias := range fa.Aliases {
			if idx, ok := headerIndex[alias]; ok {
				fieldIndex[fa.Field] = idx
				resolved[idx] = true
				columns = append(columns, fa.Field)
				break
			}
		}
	}

	// Unmapped source columns are carried in the report under their raw
	// names so a caller can see what the export contained.
	for i, h := range table.Headers {
		if !resolved[i] && h != "" {
			columns = append(columns, h)
		}
	}

	set := &ClaimSet{
		Generation: uuid.New().String(),
		Claims:     make([]Claim, 0, len(table.Rows)),
		Columns:    append(columns, "is_denied", "total_charge"),
	}

	for _, row := range table.Rows {
		claim := Claim{
			CPTCode:          textField(row, fieldIndex, FieldCPTCode),
			InsuranceCompany: textField(row, fieldIndex, FieldInsuranceCompany),
			PhysicianName:    textField(row, fieldIndex, FieldPhysicianName),
			DenialReason:     textField(row, fieldIndex, FieldDenialReason),
			PaymentAmount:    numericField(row, fieldIndex, FieldPaymentAmount),
			Balance:          numericField(row, fieldIndex, FieldBalance),
		}
		set.Claims = append(set.Claims, claim)
	}

	set.LoadMessage = fmt.Sprintf("Data loaded successfully. Rows: %d, Denials found: %d",
		set.Len(), set.DenialCount())

	logger.Info("claim set normalized",
		slog.String("generation", set.Generation),
		slog.Int("rows", set.Len()),
		slog.Int("denials", set.DenialCount()),
		slog.Any("columns", set.Columns))

	return set, nil
}

// textField returns the cell for a canonical text field, defaulting to
// "Unknown" when the column is absent or the cell is blank.
func textField(row []string, fieldIndex map[string]int, field string) string {
	idx, ok := fieldIndex[field]
	if !ok || idx >= len(row) {
		return UnknownValue
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return UnknownValue
	}
	return v
}

// numericField parses the cell for a canonical numeric field. Missing or
// unparseable cells coerce to 0. Values are not clamped: negative amounts
// (credits, refunds) pass through.
func numericField(row []string, fieldIndex map[string]int, field string) float64 {
	idx, ok := fieldIndex[field]
	if !ok || idx >= len(row) {
		return 0
	}

	v := strings.TrimSpace(row[idx])
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimPrefix(v, "$")
	if v == "" {
		return 0
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
