package analysis

import "fmt"

// DemoResult is the canned analysis served in offline mode. Every key is
// populated so the dashboard can be exercised without credentials.
func DemoResult(organizer string) Result {
	return Result{
		KeyEventName:   "Global AI Summit 2026",
		KeyDate:        "October 15, 2026",
		KeySector:      "Artificial Intelligence",
		KeySkills:      []any{"Neural Networks", "LLM Fine-tuning"},
		KeyScore:       float64(8),
		KeyCertificate: "Yes (E-Certificate provided)",
		KeyVerdict:     "Highly Recommended",
		KeyExplanation: fmt.Sprintf("Organized by %s. High networking value.", organizer),
		KeyMissingInfo: []any{"Exact venue link?"},
	}
}

// DemoPost is the offline post draft.
func DemoPost(eventName string) string {
	return "Mock Post: I attended " + eventName
}
