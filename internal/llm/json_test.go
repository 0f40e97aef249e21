package llm

import (
	"strings"
	"testing"
)

func TestEnsureJSONInstructions(t *testing.T) {
	tests := []struct {
		name   string
		sysMsg string
		want   bool // whether the instruction should be appended
	}{
		{"missing", "You extract structured data from legal text.", true},
		{"already present", "Do the thing. Return your answer in JSON format.", false},
		{"present different case", "return your answer in json format please", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ensureJSONInstructions(tc.sysMsg)
			if !strings.Contains(strings.ToLower(got), "return your answer in json format") {
				t.Errorf("instruction missing from %q", got)
			}
			appended := got != tc.sysMsg
			if appended != tc.want {
				t.Errorf("appended=%v, want %v (got %q)", appended, tc.want, got)
			}
		})
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"x": true}`, `{"x": true}`},
		{"json fence", "```json\n{\"x\": true}\n```", `{"x": true}`},
		{"bare fence", "```\n{\"x\": true}\n```", `{"x": true}`},
		{"surrounding whitespace", "  {\"x\": true}  ", `{"x": true}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeBlock(tc.input); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResponseAsJSON(t *testing.T) {
	out, err := ResponseAsJSON("```json\n{\"x\": true, \"y\": false, \"explanation\": \"ok\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["x"] != true || out["y"] != false {
		t.Errorf("unexpected decoded values: %v", out)
	}
}

func TestResponseAsJSON_Invalid(t *testing.T) {
	if _, err := ResponseAsJSON("the document is about Box Elder County"); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("expected abc..., got %q", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("expected ab, got %q", got)
	}
}
