// Package template implements {{variable}} substitution over the fixed
// variable catalog used in outreach messages. It is a plain string
// replacement, not a general template engine.
package template

import (
	"regexp"

	"talentreach/pkg/models"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// availableVariables is the closed catalog of template variables.
var availableVariables = []models.TemplateVariable{
	{Key: "candidate_name", Label: "Candidate Name", Example: "John Smith", Category: "candidate"},
	{Key: "candidate_first_name", Label: "Candidate First Name", Example: "John", Category: "candidate"},
	{Key: "candidate_email", Label: "Candidate Email", Example: "john.smith@email.com", Category: "candidate"},
	{Key: "candidate_phone", Label: "Candidate Phone", Example: "+1 555 987 6543", Category: "candidate"},
	{Key: "role_title", Label: "Role Title", Example: "Senior Software Engineer", Category: "role"},
	{Key: "company_name", Label: "Company Name", Example: "TechCorp Ltd", Category: "role"},
	{Key: "recruiter_name", Label: "Recruiter Name", Example: "Jane Doe", Category: "recruiter"},
	{Key: "recruiter_phone", Label: "Recruiter Phone", Example: "+1 555 123 4567", Category: "recruiter"},
	{Key: "recruiter_email", Label: "Recruiter Email", Example: "jane@recruit.com", Category: "recruiter"},
}

// AvailableVariables returns the variable catalog for template authoring.
func AvailableVariables() []models.TemplateVariable {
	out := make([]models.TemplateVariable, len(availableVariables))
	copy(out, availableVariables)
	return out
}

// Render replaces every {{key}} occurrence with its value. Unknown keys are
// left verbatim so partially populated variable sets render without error.
func Render(text string, variables map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := variables[key]; ok {
			return value
		}
		return match
	})
}

// ExtractVariables returns the distinct variable names used in a template,
// in order of first appearance.
func ExtractVariables(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// ValidateVariables returns the variable names in a template that are not
// part of the catalog.
func ValidateVariables(text string) []string {
	known := make(map[string]bool, len(availableVariables))
	for _, v := range availableVariables {
		known[v.Key] = true
	}

	var unknown []string
	for _, name := range ExtractVariables(text) {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Preview renders a template with the catalog's example data, for showing
// template authors what a filled-in message looks like.
func Preview(text string) string {
	example := make(map[string]string, len(availableVariables))
	for _, v := range availableVariables {
		example[v.Key] = v.Example
	}
	return Render(text, example)
}
