package analysis

import (
	"fmt"
	"strings"
)

// BuildAnalysisPrompt returns the instruction sent ahead of the poster and
// message. The organizer is interpolated verbatim.
func BuildAnalysisPrompt(organizer string) string {
	var b strings.Builder
	b.WriteString("Act as a tech career mentor. Analyze this event.\n")
	fmt.Fprintf(&b, "ORGANIZER: %s\n\n", organizer)
	b.WriteString("Return ONLY a JSON object with these keys:\n")
	b.WriteString(`"event_name" (string), "date" (string), "sector" (string), `)
	b.WriteString(`"skills" (list of strings), "score" (integer 1-10), `)
	b.WriteString(`"certificate" (specify if Yes/No/Likely and what kind), `)
	b.WriteString(`"verdict" (string), "explanation" (string), "missing_info" (list of strings).`)
	b.WriteString("\nDo not include explanations, markdown, or text before or after the JSON.")
	return b.String()
}

// BuildPostPrompt returns the instruction for a professional post draft.
func BuildPostPrompt(eventName, reflection string) string {
	return fmt.Sprintf("Write a professional LinkedIn post for '%s'. Reflection: %s.", eventName, reflection)
}
