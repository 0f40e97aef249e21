package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const jsonInstructions = "Return your answer in JSON format"

// ensureJSONInstructions appends the JSON-format instruction to a system
// message that does not already carry it.
func ensureJSONInstructions(sysMsg string) string {
	if strings.Contains(strings.ToLower(sysMsg), strings.ToLower(jsonInstructions)) {
		return sysMsg
	}
	return fmt.Sprintf("%s %s.", strings.TrimRight(sysMsg, " "), jsonInstructions)
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeBlock removes a ```json fence if the model wrapped its answer
// in one despite the JSON response format.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ResponseAsJSON decodes an LLM response into a key/value mapping.
func ResponseAsJSON(raw string) (map[string]any, error) {
	text := stripCodeBlock(raw)
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse response json: %w (raw: %s)", err, truncate(text, 200))
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
