package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/internal/dnc"
	"talentreach/internal/template"
	"talentreach/pkg/models"
)

// Dispatch refusal and failure kinds. The first two are pre-flight checks:
// when they fire, no provider call has been made.
var (
	ErrDoNotContact     = errors.New("recipient is on the do-not-contact list")
	ErrMissingRecipient = errors.New("no recipient address for the requested channel")
	ErrProviderRejected = errors.New("provider rejected the message")
	ErrNotConfigured    = errors.New("provider not configured")
)

// SendSMSParams describes one outbound SMS.
type SendSMSParams struct {
	ProjectID  string
	CVID       string
	ToPhone    string
	Body       string
	TemplateID string
	Variables  map[string]string
}

// SendEmailParams describes one outbound email.
type SendEmailParams struct {
	ProjectID  string
	CVID       string
	ToEmail    string
	Subject    string
	Body       string
	TemplateID string
	Variables  map[string]string
}

// Dispatcher sends single messages through a provider, records them in the
// message log and notifies the workflow engine of successful sends.
type Dispatcher struct {
	store    *database.Store
	registry *dnc.Registry
	sms      SMSProvider
	email    EmailProvider
	notifier WorkflowNotifier
	log      *zap.Logger
}

// NewDispatcher wires a dispatcher. Providers may be nil when their
// credentials are not configured; sends on that channel fail pre-flight.
func NewDispatcher(store *database.Store, registry *dnc.Registry, sms SMSProvider, email EmailProvider, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, registry: registry, sms: sms, email: email, log: log}
}

// SetNotifier registers the workflow callback for outbound sends.
func (d *Dispatcher) SetNotifier(n WorkflowNotifier) {
	d.notifier = n
}

// SendSMS dispatches one SMS. Sequence: consent check, template render,
// recipient precondition, queued message row, provider call, then sent or
// failed. The returned message is persisted in every outcome past the
// pre-flight checks.
func (d *Dispatcher) SendSMS(ctx context.Context, p SendSMSParams) (*models.Message, error) {
	blocked, err := d.registry.Check(models.DNCPhone, p.ToPhone)
	if err != nil {
		return nil, fmt.Errorf("consent check: %w", err)
	}
	if blocked {
		d.log.Info("sms refused by consent registry",
			zap.String("project_id", p.ProjectID), zap.String("cv_id", p.CVID))
		return nil, ErrDoNotContact
	}

	body, _, templateID, err := d.resolveContent(p.Body, "", p.TemplateID, p.Variables)
	if err != nil {
		return nil, err
	}

	if p.ToPhone == "" {
		return nil, fmt.Errorf("sms needs a phone number: %w", ErrMissingRecipient)
	}
	if d.sms == nil {
		return nil, fmt.Errorf("sms: %w", ErrNotConfigured)
	}

	msg := &models.Message{
		ProjectID:   p.ProjectID,
		CVID:        p.CVID,
		Type:        models.MessageTypeSMS,
		Direction:   models.DirectionOutbound,
		Status:      models.MessageQueued,
		FromAddress: d.sms.From(),
		ToAddress:   p.ToPhone,
		Body:        body,
		TemplateID:  templateID,
	}
	if err := d.store.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}

	providerID, sendErr := d.sms.SendSMS(ctx, p.ToPhone, body)
	return d.finish(msg, providerID, sendErr)
}

// SendEmail dispatches one email with the same sequence as SendSMS.
func (d *Dispatcher) SendEmail(ctx context.Context, p SendEmailParams) (*models.Message, error) {
	blocked, err := d.registry.Check(models.DNCEmail, p.ToEmail)
	if err != nil {
		return nil, fmt.Errorf("consent check: %w", err)
	}
	if blocked {
		d.log.Info("email refused by consent registry",
			zap.String("project_id", p.ProjectID), zap.String("cv_id", p.CVID))
		return nil, ErrDoNotContact
	}

	body, subject, templateID, err := d.resolveContent(p.Body, p.Subject, p.TemplateID, p.Variables)
	if err != nil {
		return nil, err
	}

	if p.ToEmail == "" {
		return nil, fmt.Errorf("email needs an address: %w", ErrMissingRecipient)
	}
	if d.email == nil {
		return nil, fmt.Errorf("email: %w", ErrNotConfigured)
	}

	msg := &models.Message{
		ProjectID:   p.ProjectID,
		CVID:        p.CVID,
		Type:        models.MessageTypeEmail,
		Direction:   models.DirectionOutbound,
		Status:      models.MessageQueued,
		FromAddress: d.email.From(),
		ToAddress:   p.ToEmail,
		Subject:     subject,
		Body:        body,
		TemplateID:  templateID,
	}
	if err := d.store.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}

	providerID, sendErr := d.email.SendEmail(ctx, p.ToEmail, subject, body)
	return d.finish(msg, providerID, sendErr)
}

// resolveContent loads the template when one is referenced, then renders
// variables into body and subject.
func (d *Dispatcher) resolveContent(body, subject, templateID string, vars map[string]string) (string, string, string, error) {
	if templateID != "" {
		tmpl, err := d.store.GetTemplate(templateID)
		if err != nil {
			return "", "", "", fmt.Errorf("load template %s: %w", templateID, err)
		}
		if body == "" {
			body = tmpl.Body
		}
		if subject == "" {
			subject = tmpl.Subject
		}
	}
	return template.Render(body, vars), template.Render(subject, vars), templateID, nil
}

// finish applies the provider outcome to the queued row and fires the
// workflow notification on success.
func (d *Dispatcher) finish(msg *models.Message, providerID string, sendErr error) (*models.Message, error) {
	if sendErr != nil {
		if err := d.store.MarkMessageFailed(msg.ID, sendErr.Error()); err != nil {
			d.log.Error("failed to record provider rejection", zap.String("message_id", msg.ID), zap.Error(err))
		}
		msg.Status = models.MessageFailed
		msg.ErrorMessage = sendErr.Error()
		d.log.Warn("provider rejected message",
			zap.String("message_id", msg.ID), zap.Error(sendErr))
		return msg, fmt.Errorf("%w: %s", ErrProviderRejected, sendErr.Error())
	}

	now := time.Now().UTC()
	if err := d.store.MarkMessageSent(msg.ID, providerID, now); err != nil {
		return msg, fmt.Errorf("record sent: %w", err)
	}
	msg.Status = models.MessageSent
	msg.ProviderMessageID = providerID
	msg.SentAt = &now

	d.log.Info("message sent",
		zap.String("message_id", msg.ID),
		zap.String("type", string(msg.Type)),
		zap.String("provider_message_id", providerID))

	if d.notifier != nil && msg.CVID != "" {
		d.notifier.OutboundSent(msg.ProjectID, msg.CVID, msg.Body, now)
	}
	return msg, nil
}

// SMS segment sizes: a single-segment message carries 160 characters;
// concatenated messages lose 7 characters per segment to the multipart
// header, leaving 153.
const (
	singleSegmentChars = 160
	multiSegmentChars  = 153
)

// Segments returns the number of SMS segments a body occupies.
func Segments(body string) int {
	length := len([]rune(body))
	if length == 0 {
		return 1
	}
	if length <= singleSegmentChars {
		return 1
	}
	return (length + multiSegmentChars - 1) / multiSegmentChars
}
