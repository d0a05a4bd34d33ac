// Package analysis holds the event analysis contract: the result shape,
// the prompts that request it and the tolerant parser that decodes it.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known result keys.
const (
	KeyEventName   = "event_name"
	KeyDate        = "date"
	KeySector      = "sector"
	KeySkills      = "skills"
	KeyScore       = "score"
	KeyCertificate = "certificate"
	KeyVerdict     = "verdict"
	KeyExplanation = "explanation"
	KeyMissingInfo = "missing_info"
)

// Keys lists the nine result keys in prompt order.
var Keys = []string{
	KeyEventName, KeyDate, KeySector, KeySkills, KeyScore,
	KeyCertificate, KeyVerdict, KeyExplanation, KeyMissingInfo,
}

// Result is a decoded model answer. No key is guaranteed to be present and
// values may carry unexpected types; the accessors return zero values then.
type Result map[string]any

// String returns the value at key rendered as text.
func (r Result) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns the value at key as a list of strings. A bare string is
// treated as a one-element list.
func (r Result) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s := Result{"v": item}.String("v")
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Score returns the numeric score and whether one was present. Numeric
// strings such as "8" are accepted.
func (r Result) Score() (float64, bool) {
	var f float64
	switch v := r[KeyScore].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// EventName is a shorthand used by the post draft flow.
func (r Result) EventName() string { return r.String(KeyEventName) }

// ErrorResult is the error variant of an analysis: a single message.
type ErrorResult struct {
	Message string `json:"error"`
}

// Error implements error so failures can travel through error returns.
func (e ErrorResult) Error() string { return e.Message }

// Outcome holds exactly one of a Result or an ErrorResult. The zero value is
// an empty success.
type Outcome struct {
	result  Result
	failure *ErrorResult
}

// Success wraps a result. A nil result becomes an empty one.
func Success(r Result) Outcome {
	if r == nil {
		r = Result{}
	}
	return Outcome{result: r}
}

// Failure wraps an error message.
func Failure(msg string) Outcome {
	return Outcome{failure: &ErrorResult{Message: msg}}
}

// FailureFrom wraps err's message.
func FailureFrom(err error) Outcome {
	return Failure(err.Error())
}

// Result returns the result when the outcome is a success.
func (o Outcome) Result() (Result, bool) {
	if o.failure != nil {
		return nil, false
	}
	if o.result == nil {
		return Result{}, true
	}
	return o.result, true
}

// Failure returns the error when the outcome failed.
func (o Outcome) Failure() (ErrorResult, bool) {
	if o.failure == nil {
		return ErrorResult{}, false
	}
	return *o.failure, true
}

// MarshalJSON renders the outcome as the result mapping or {"error": msg}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.failure != nil {
		return json.Marshal(o.failure)
	}
	if o.result == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(o.result))
}
