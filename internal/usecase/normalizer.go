package usecase

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iho/fintrack/internal/domain"
)

const codeFence = "```"

// NormalizeClassifierOutput strips markdown fencing from a raw model reply and
// decodes it into a ClassificationResult. A bare array is returned as
// ResultSequence, an object as ResultObject and anything else as ResultOther;
// shape validation is left to the Reconciler.
func NormalizeClassifierOutput(raw string) (domain.ClassificationResult, error) {
	clean := stripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return domain.ClassificationResult{}, &domain.MalformedOutputError{Raw: raw, Err: err}
	}
	// Trailing text after the first value means the reply was not a single document.
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
		}
		return domain.ClassificationResult{}, &domain.MalformedOutputError{Raw: raw, Err: err}
	}

	switch v := decoded.(type) {
	case []any:
		return domain.ClassificationResult{Kind: domain.ResultSequence, Sequence: v}, nil
	case map[string]any:
		return domain.ClassificationResult{Kind: domain.ResultObject, Object: v}, nil
	default:
		return domain.ClassificationResult{Kind: domain.ResultOther, Other: v}, nil
	}
}

// stripCodeFence removes a leading ``` (optionally tagged "json") and a
// trailing ``` from s, then trims surrounding whitespace.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, codeFence) {
		s = strings.TrimPrefix(s, codeFence)
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, codeFence) {
		s = strings.TrimSuffix(s, codeFence)
	}

	return strings.TrimSpace(s)
}
