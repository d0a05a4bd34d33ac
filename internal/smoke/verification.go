package smoke

import (
	"errors"
	"fmt"
	"strings"
)

// resultKeys are the keys every demo analysis carries.
var resultKeys = []string{
	"event_name", "date", "sector", "skills", "score",
	"certificate", "verdict", "explanation", "missing_info",
}

var errMismatch = errors.New("verification failed")

// verifySession checks one session's observations. Demo answers are fully
// checked; live answers only need to round-trip through the store.
func verifySession(r sessionReport, live bool) error {
	if !live {
		for _, key := range resultKeys {
			if _, ok := r.Analysis[key]; !ok {
				return fmt.Errorf("%w: session %s: demo result missing %q", errMismatch, r.SessionID, key)
			}
		}
		if explanation, _ := r.Analysis["explanation"].(string); !strings.Contains(explanation, r.Organizer) {
			return fmt.Errorf("%w: session %s: explanation does not name organizer %q", errMismatch, r.SessionID, r.Organizer)
		}
	}

	if got, want := fmt.Sprint(r.Stored["event_name"]), fmt.Sprint(r.Analysis["event_name"]); got != want {
		return fmt.Errorf("%w: session %s: stored event %q, analysed %q", errMismatch, r.SessionID, got, want)
	}
	if exp, got := fmt.Sprint(r.Stored["explanation"]), fmt.Sprint(r.Analysis["explanation"]); exp != got {
		return fmt.Errorf("%w: session %s: stored result belongs to another session", errMismatch, r.SessionID)
	}

	if strings.TrimSpace(r.Post) == "" {
		return fmt.Errorf("%w: session %s: empty post", errMismatch, r.SessionID)
	}
	if !live {
		want := "Mock Post: I attended " + fmt.Sprint(r.Analysis["event_name"])
		if r.Post != want {
			return fmt.Errorf("%w: session %s: post %q, want %q", errMismatch, r.SessionID, r.Post, want)
		}
	}
	return nil
}
