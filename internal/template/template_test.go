package template

import (
	"reflect"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	vars := map[string]string{
		"candidate_first_name": "Jane",
		"recruiter_name":       "Sam",
		"company_name":         "Acme",
	}

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "single variable",
			text:     "Hi {{candidate_first_name}}!",
			expected: "Hi Jane!",
		},
		{
			name:     "multiple variables",
			text:     "{{recruiter_name}} from {{company_name}}",
			expected: "Sam from Acme",
		},
		{
			name:     "repeated variable",
			text:     "{{company_name}} {{company_name}}",
			expected: "Acme Acme",
		},
		{
			name:     "unknown key left verbatim",
			text:     "Hello {{nonexistent}}",
			expected: "Hello {{nonexistent}}",
		},
		{
			name:     "no variables",
			text:     "plain text",
			expected: "plain text",
		},
		{
			name:     "empty string",
			text:     "",
			expected: "",
		},
		{
			name:     "malformed braces untouched",
			text:     "{{ spaced }} {single}",
			expected: "{{ spaced }} {single}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.text, vars); got != tt.expected {
				t.Errorf("Render(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	text := "Hi {{candidate_name}}, {{recruiter_name}} here. Again: {{candidate_name}}."
	got := ExtractVariables(text)
	expected := []string{"candidate_name", "recruiter_name"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ExtractVariables = %v, expected %v", got, expected)
	}

	if got := ExtractVariables("no placeholders"); got != nil {
		t.Errorf("expected nil for plain text, got %v", got)
	}
}

func TestValidateVariables(t *testing.T) {
	if unknown := ValidateVariables("Hi {{candidate_name}} re {{role_title}}"); len(unknown) != 0 {
		t.Errorf("catalog variables flagged as unknown: %v", unknown)
	}

	unknown := ValidateVariables("Hi {{candidate_name}}, your {{salary}} and {{start_date}}")
	expected := []string{"salary", "start_date"}
	if !reflect.DeepEqual(unknown, expected) {
		t.Errorf("ValidateVariables = %v, expected %v", unknown, expected)
	}
}

func TestPreviewFillsAllCatalogVariables(t *testing.T) {
	var b strings.Builder
	for _, v := range AvailableVariables() {
		b.WriteString("{{" + v.Key + "}} ")
	}

	preview := Preview(b.String())
	if strings.Contains(preview, "{{") {
		t.Errorf("preview left placeholders unfilled: %q", preview)
	}
}
