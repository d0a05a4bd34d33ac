package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Fence markers removed before decoding.
const (
	fenceJSON = "```json"
	fence     = "```"
)

// Sentinel errors for decoding.
var (
	ErrNotObject   = errors.New("model response is not a JSON object")
	ErrModelReport = errors.New("model reported an error")
)

// keyError marks a decoded object as the error variant.
const keyError = "error"

// StripFences removes every literal fence marker and trims the result. It
// expects at most one fenced block and is not a markdown parser.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, fenceJSON, "")
	s = strings.ReplaceAll(s, fence, "")
	return strings.TrimSpace(s)
}

// Parse decodes raw model output into a Result. Decode failures and objects
// carrying a top-level "error" key become the error variant.
func Parse(raw string) Outcome {
	r, err := decode(StripFences(raw))
	if err != nil {
		return FailureFrom(err)
	}
	return Success(r)
}

func decode(clean string) (Result, error) {
	if clean == "" {
		return nil, errors.New("empty model response")
	}
	var v any
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	r := Result(obj)
	if _, reported := r[keyError]; reported {
		if msg := strings.TrimSpace(r.String(keyError)); msg != "" {
			return nil, ErrorResult{Message: msg}
		}
		return nil, ErrModelReport
	}
	return r, nil
}
