package claims

import "errors"

// Engine errors surfaced to callers. The transport layer maps these to
// user-facing responses.
var (
	// ErrEmptyInput indicates the uploaded table contained zero usable rows.
	ErrEmptyInput = errors.New("uploaded file contains no claim rows")
	// ErrUnreadableInput indicates the raw table could not be formed at all.
	ErrUnreadableInput = errors.New("unable to read file as CSV or Excel")
)

// Canonical field names of the claim schema.
const (
	FieldCPTCode          = "cpt_code"
	FieldInsuranceCompany = "insurance_company"
	FieldPhysicianName    = "physician_name"
	FieldPaymentAmount    = "payment_amount"
	FieldBalance          = "balance"
	FieldDenialReason     = "denial_reason"
)

// UnknownValue fills missing text fields so grouping never keys on "".
const UnknownValue = "Unknown"

// Claim is one billed procedure instance in canonical form.
// Amounts pass through as coerced, including negatives (credits/refunds).
type Claim struct {
	CPTCode          string  `json:"cpt_code"`
	InsuranceCompany string  `json:"insurance_company"`
	PhysicianName    string  `json:"physician_name"`
	DenialReason     string  `json:"denial_reason"`
	PaymentAmount    float64 `json:"payment_amount"`
	Balance          float64 `json:"balance"`
}

// IsDenied reports whether the claim is a denial: zero payment with a
// positive outstanding balance. Derived, never stored.
func (c Claim) IsDenied() bool {
	return c.PaymentAmount == 0 && c.Balance > 0
}

// TotalCharge is the full billed amount for the claim.
func (c Claim) TotalCharge() float64 {
	return c.PaymentAmount + c.Balance
}

// ClaimSet is the full ordered collection of claims from one upload.
// It is immutable once built; a new upload produces a new set with a new
// generation tag.
type ClaimSet struct {
	// Generation uniquely identifies this set so in-flight work against a
	// replaced set can be detected and discarded.
	Generation string

	Claims []Claim

	// Columns lists the canonical fields resolved from the source headers,
	// plus the derived fields.
	Columns []string

	// LoadMessage is an operator-facing summary of the load; it carries no
	// control-flow meaning.
	LoadMessage string
}

// HasColumn reports whether a canonical field was present in the source.
func (s *ClaimSet) HasColumn(field string) bool {
	for _, c := range s.Columns {
		if c == field {
			return true
		}
	}
	return false
}

// DenialCount counts denied claims in the set.
func (s *ClaimSet) DenialCount() int {
	n := 0
	for _, c := range s.Claims {
		if c.IsDenied() {
			n++
		}
	}
	return n
}

// Len returns the number of claims in the set.
func (s *ClaimSet) Len() int {
	return len(s.Claims)
}
