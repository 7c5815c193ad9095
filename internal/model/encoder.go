package model

import "sort"

// EncodingTable maps one feature's category labels to stable integer
// codes. It is built once at training time from the observed values and is
// immutable afterwards; inference uses it unchanged.
type EncodingTable struct {
	codes  map[string]int
	labels []string
}

// BuildEncodingTable assigns codes to the distinct values in sorted label
// order, numbering from 0.
func BuildEncodingTable(values []string) *EncodingTable {
	seen := make(map[string]bool, len(values))
	var labels []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			labels = append(labels, v)
		}
	}
	sort.Strings(labels)

	codes := make(map[string]int, len(labels))
	for i, l := range labels {
		codes[l] = i
	}

	return &EncodingTable{codes: codes, labels: labels}
}

// Encode returns the code for a label. A label unseen at training time
// maps to 0, colliding with whatever category legitimately received code 0.
// That approximation matches the shipped behavior and is relied on by
// existing clients; do not change it without a schema version bump.
func (t *EncodingTable) Encode(label string) int {
	if code, ok := t.codes[label]; ok {
		return code
	}
	return 0
}

// Lookup returns the code and whether the label was seen at training time.
func (t *EncodingTable) Lookup(label string) (int, bool) {
	code, ok := t.codes[label]
	return code, ok
}

// Label returns the label for a code, or "" when out of range.
func (t *EncodingTable) Label(code int) string {
	if code < 0 || code >= len(t.labels) {
		return ""
	}
	return t.labels[code]
}

// Len returns the number of distinct labels.
func (t *EncodingTable) Len() int {
	return len(t.labels)
}
