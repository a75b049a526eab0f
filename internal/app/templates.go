package app

import (
	"fmt"
	"strings"

	"talentreach/internal/template"
	"talentreach/pkg/models"
)

// SaveTemplate validates and stores a message template. Bodies and subjects
// may only reference variables from the fixed catalog; unknown placeholders
// are rejected rather than silently left in outbound mail.
func (a *App) SaveTemplate(t *models.MessageTemplate) error {
	if t.Name == "" || t.Body == "" {
		return fmt.Errorf("template needs a name and body: %w", ErrValidation)
	}
	if t.Type != models.MessageTypeSMS && t.Type != models.MessageTypeEmail {
		return fmt.Errorf("template type must be sms or email: %w", ErrValidation)
	}

	if unknown := template.ValidateVariables(t.Body + " " + t.Subject); len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, strings.Join(unknown, ", "))
	}

	if t.ID == "" {
		return a.Store.CreateTemplate(t)
	}
	return a.Store.UpdateTemplate(t)
}

// DefaultTemplate returns the default template for a project and channel,
// or nil when none is marked default.
func (a *App) DefaultTemplate(projectID string, msgType models.MessageType) (*models.MessageTemplate, error) {
	templates, err := a.Store.ListTemplatesByProject(projectID)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if t.Type == msgType && t.IsDefault {
			return t, nil
		}
	}
	return nil, nil
}

// TemplateVariables builds the substitution map for a candidate, combining
// the recruiter identity from config with the candidate's contact details.
func (a *App) TemplateVariables(candidate *models.WorkflowCandidate) map[string]string {
	vars := map[string]string{
		"role_title":      a.Config.RoleTitle,
		"company_name":    a.Config.CompanyName,
		"recruiter_name":  a.Config.RecruiterName,
		"recruiter_email": a.Config.RecruiterEmail,
		"recruiter_phone": a.Config.RecruiterPhone,
	}
	if candidate != nil {
		vars["candidate_name"] = candidate.Name
		vars["candidate_first_name"] = firstName(candidate.Name)
		vars["candidate_email"] = candidate.Email
		vars["candidate_phone"] = candidate.Phone
	}
	return vars
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
