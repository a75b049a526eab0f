package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/internal/outreach"
	"talentreach/pkg/models"
)

// SendSMS sends one SMS to a pipeline candidate. An empty toPhone falls back
// to the candidate's stored number.
func (a *App) SendSMS(ctx context.Context, projectID, cvID, toPhone, body, templateID string) (*models.Message, error) {
	candidate, err := a.candidateForSend(projectID, cvID)
	if err != nil {
		return nil, err
	}
	if toPhone == "" && candidate != nil {
		toPhone = candidate.Phone
	}
	if toPhone == "" {
		return nil, ErrNoPhone
	}

	return a.Dispatcher.SendSMS(ctx, outreach.SendSMSParams{
		ProjectID:  projectID,
		CVID:       cvID,
		ToPhone:    toPhone,
		Body:       body,
		TemplateID: templateID,
		Variables:  a.TemplateVariables(candidate),
	})
}

// SendEmail sends one email to a pipeline candidate. An empty toEmail falls
// back to the candidate's stored address.
func (a *App) SendEmail(ctx context.Context, projectID, cvID, toEmail, subject, body, templateID string) (*models.Message, error) {
	candidate, err := a.candidateForSend(projectID, cvID)
	if err != nil {
		return nil, err
	}
	if toEmail == "" && candidate != nil {
		toEmail = candidate.Email
	}
	if toEmail == "" {
		return nil, ErrNoEmail
	}

	return a.Dispatcher.SendEmail(ctx, outreach.SendEmailParams{
		ProjectID:  projectID,
		CVID:       cvID,
		ToEmail:    toEmail,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Variables:  a.TemplateVariables(candidate),
	})
}

// candidateForSend resolves the candidate when a cvId is provided. Messages
// may also be sent to addresses with no pipeline candidate.
func (a *App) candidateForSend(projectID, cvID string) (*models.WorkflowCandidate, error) {
	if cvID == "" {
		return nil, nil
	}
	candidate, err := a.Store.GetProjectCandidate(projectID, cvID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// fallbackContactBody is used by forced contact attempts when the project has
// no default SMS template.
const fallbackContactBody = "Hi {{candidate_first_name}}, this is {{recruiter_name}} from {{company_name}} about the {{role_title}} role. Is now a good time to talk?"

// contactAttempter fulfils forced contact attempts from the workflow engine
// by sending the project's default SMS template.
type contactAttempter struct {
	app *App
}

func (c *contactAttempter) AttemptContact(ctx context.Context, candidate *models.WorkflowCandidate) error {
	if candidate.Phone == "" {
		return ErrNoPhone
	}

	body := fallbackContactBody
	templateID := ""
	tmpl, err := c.app.DefaultTemplate(candidate.ProjectID, models.MessageTypeSMS)
	if err != nil {
		return fmt.Errorf("load default template: %w", err)
	}
	if tmpl != nil {
		body = ""
		templateID = tmpl.ID
	}

	c.app.Log.Info("forced contact attempt",
		zap.String("cv_id", candidate.ID),
		zap.String("project_id", candidate.ProjectID))

	_, err = c.app.Dispatcher.SendSMS(ctx, outreach.SendSMSParams{
		ProjectID:  candidate.ProjectID,
		CVID:       candidate.ID,
		ToPhone:    candidate.Phone,
		Body:       body,
		TemplateID: templateID,
		Variables:  c.app.TemplateVariables(candidate),
	})
	return err
}
