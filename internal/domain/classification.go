package domain

import (
	"encoding/json"
	"strings"
)

// ResultKind identifies which shape the classifier returned.
type ResultKind int

const (
	// ResultOther is any decoded value that is neither an array nor an object.
	ResultOther ResultKind = iota
	// ResultSequence is a bare JSON array of candidates.
	ResultSequence
	// ResultObject is a JSON object, expected to hold a "transactions" array.
	ResultObject
)

// TransactionsKey is the envelope field holding the candidate sequence.
const TransactionsKey = "transactions"

// ClassificationResult is the decoded classifier output. Exactly one of
// Sequence, Object or Other is meaningful, as selected by Kind.
type ClassificationResult struct {
	Kind     ResultKind
	Sequence []any
	Object   map[string]any
	Other    any
}

// Envelope returns the result in {transactions: ...} form. Objects and other
// values are returned unchanged.
func (r ClassificationResult) Envelope() any {
	switch r.Kind {
	case ResultSequence:
		return map[string]any{TransactionsKey: r.Sequence}
	case ResultObject:
		return r.Object
	default:
		return r.Other
	}
}

// Transactions returns the candidate sequence, or false if the result does
// not carry one.
func (r ClassificationResult) Transactions() ([]any, bool) {
	switch r.Kind {
	case ResultSequence:
		return r.Sequence, true
	case ResultObject:
		seq, ok := r.Object[TransactionsKey].([]any)
		return seq, ok
	default:
		return nil, false
	}
}

// Candidate is one transaction-shaped record produced by the classifier.
// Any field may be missing or of the wrong type.
type Candidate map[string]any

// Candidate fields
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldType        = "type"
)

// String returns the trimmed string value of key. Numbers are rendered as
// their JSON text; any other type counts as absent.
func (c Candidate) String(key string) (string, bool) {
	switch v := c[key].(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
