package outreach

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/internal/dnc"
	"talentreach/pkg/models"
)

type fakeSMS struct {
	calls    int
	fail     bool
	lastTo   string
	lastBody string
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	f.calls++
	f.lastTo = to
	f.lastBody = body
	if f.fail {
		return "", fmt.Errorf("carrier rejected")
	}
	return fmt.Sprintf("SM%d", f.calls), nil
}

func (f *fakeSMS) From() string { return "+15550000" }

type fakeEmail struct {
	calls       int
	fail        bool
	lastSubject string
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	f.calls++
	f.lastSubject = subject
	if f.fail {
		return "", fmt.Errorf("smtp error")
	}
	return fmt.Sprintf("EM%d", f.calls), nil
}

func (f *fakeEmail) From() string { return "recruiter@example.com" }

type notifyCall struct {
	projectID, cvID, body string
	at                    time.Time
}

type fakeNotifier struct {
	outbound []notifyCall
	inbound  []notifyCall
}

func (f *fakeNotifier) OutboundSent(projectID, cvID, body string, at time.Time) {
	f.outbound = append(f.outbound, notifyCall{projectID, cvID, body, at})
}

func (f *fakeNotifier) InboundReceived(projectID, cvID, body string, at time.Time) {
	f.inbound = append(f.inbound, notifyCall{projectID, cvID, body, at})
}

func createTestDispatcher(t *testing.T) (*Dispatcher, *database.Store, *dnc.Registry, *fakeSMS, *fakeEmail, *fakeNotifier) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	registry := dnc.NewRegistry(store, zap.NewNop())
	sms := &fakeSMS{}
	email := &fakeEmail{}
	notifier := &fakeNotifier{}

	d := NewDispatcher(store, registry, sms, email, zap.NewNop())
	d.SetNotifier(notifier)
	return d, store, registry, sms, email, notifier
}

func TestSendSMSSuccess(t *testing.T) {
	d, store, _, sms, _, notifier := createTestDispatcher(t)

	msg, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		ToPhone:   "+15550100",
		Body:      "Hi {{candidate_first_name}}!",
		Variables: map[string]string{"candidate_first_name": "Jane"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if sms.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", sms.calls)
	}
	if sms.lastBody != "Hi Jane!" {
		t.Errorf("variables not rendered before dispatch: %q", sms.lastBody)
	}

	if msg.Status != models.MessageSent {
		t.Errorf("expected sent, got %s", msg.Status)
	}
	if msg.ProviderMessageID != "SM1" {
		t.Errorf("provider id not recorded: %q", msg.ProviderMessageID)
	}
	if msg.FromAddress != "+15550000" {
		t.Errorf("from address not recorded: %q", msg.FromAddress)
	}

	// Persisted row matches
	stored, err := store.GetMessage(msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if stored.Status != models.MessageSent || stored.SentAt == nil {
		t.Error("sent state not persisted")
	}

	// Workflow notified
	if len(notifier.outbound) != 1 {
		t.Fatalf("expected 1 outbound notification, got %d", len(notifier.outbound))
	}
	if notifier.outbound[0].cvID != "cv-1" || notifier.outbound[0].body != "Hi Jane!" {
		t.Error("notification carries wrong data")
	}
}

func TestSendSMSRefusedByConsentRegistry(t *testing.T) {
	d, store, registry, sms, _, notifier := createTestDispatcher(t)

	registry.Add(models.DNCPhone, "+15550100", models.DNCOptOut)

	// Formatting differences must not beat the normalized check
	_, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		ToPhone:   "+1 (555) 010-0",
		Body:      "hello",
	})
	if !errors.Is(err, ErrDoNotContact) {
		t.Fatalf("expected ErrDoNotContact, got %v", err)
	}

	// No provider call, no message row, no notification
	if sms.calls != 0 {
		t.Errorf("provider called %d times for blocked recipient", sms.calls)
	}
	msgs, _ := store.ListMessagesByCV("cv-1")
	for _, m := range msgs {
		if m.ToAddress == "+15550100" && m.Status == models.MessageSent {
			t.Error("blocked recipient got a sent message")
		}
	}
	if len(notifier.outbound) != 0 {
		t.Error("workflow notified despite refusal")
	}
}

func TestSendSMSMissingRecipient(t *testing.T) {
	d, store, _, sms, _, _ := createTestDispatcher(t)

	_, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		Body:      "hello",
	})
	if !errors.Is(err, ErrMissingRecipient) {
		t.Fatalf("expected ErrMissingRecipient, got %v", err)
	}
	if sms.calls != 0 {
		t.Error("provider called without a recipient")
	}
	msgs, _ := store.ListMessagesByCV("cv-1")
	if len(msgs) != 0 {
		t.Error("message row created for precondition failure")
	}
}

func TestSendSMSProviderRejection(t *testing.T) {
	d, store, _, sms, _, notifier := createTestDispatcher(t)
	sms.fail = true

	msg, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		ToPhone:   "+15550100",
		Body:      "hello",
	})
	if !errors.Is(err, ErrProviderRejected) {
		t.Fatalf("expected ErrProviderRejected, got %v", err)
	}

	// The queued row is kept and marked failed with the provider error
	stored, storeErr := store.GetMessage(msg.ID)
	if storeErr != nil {
		t.Fatalf("get message: %v", storeErr)
	}
	if stored.Status != models.MessageFailed {
		t.Errorf("expected failed, got %s", stored.Status)
	}
	if !strings.Contains(stored.ErrorMessage, "carrier rejected") {
		t.Errorf("provider error not recorded: %q", stored.ErrorMessage)
	}

	if len(notifier.outbound) != 0 {
		t.Error("workflow notified for failed send")
	}
}

func TestSendSMSFromTemplate(t *testing.T) {
	d, store, _, sms, _, _ := createTestDispatcher(t)

	tmpl := &models.MessageTemplate{
		ProjectID: "proj-1",
		Name:      "intro",
		Type:      models.MessageTypeSMS,
		Body:      "Hi {{candidate_first_name}}, {{recruiter_name}} here.",
	}
	if err := store.CreateTemplate(tmpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	msg, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID:  "proj-1",
		CVID:       "cv-1",
		ToPhone:    "+15550100",
		TemplateID: tmpl.ID,
		Variables: map[string]string{
			"candidate_first_name": "Jane",
			"recruiter_name":       "Sam",
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if sms.lastBody != "Hi Jane, Sam here." {
		t.Errorf("template not rendered: %q", sms.lastBody)
	}
	if msg.TemplateID != tmpl.ID {
		t.Errorf("template id not recorded on message")
	}
}

func TestSendSMSUnknownTemplate(t *testing.T) {
	d, _, _, sms, _, _ := createTestDispatcher(t)

	_, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID:  "proj-1",
		ToPhone:    "+15550100",
		TemplateID: "missing",
	})
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if sms.calls != 0 {
		t.Error("provider called with missing template")
	}
}

func TestSendEmailSuccess(t *testing.T) {
	d, _, _, _, email, notifier := createTestDispatcher(t)

	msg, err := d.SendEmail(context.Background(), SendEmailParams{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		ToEmail:   "jane@example.com",
		Subject:   "About the {{role_title}} role",
		Body:      "Hello!",
		Variables: map[string]string{"role_title": "Backend Engineer"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if email.lastSubject != "About the Backend Engineer role" {
		t.Errorf("subject not rendered: %q", email.lastSubject)
	}
	if msg.Status != models.MessageSent || msg.ProviderMessageID != "EM1" {
		t.Error("email send state not recorded")
	}
	if len(notifier.outbound) != 1 {
		t.Error("workflow not notified")
	}
}

func TestSendEmailRefusedByConsentRegistry(t *testing.T) {
	d, _, registry, _, email, _ := createTestDispatcher(t)

	registry.Add(models.DNCEmail, "jane@example.com", models.DNCBounce)

	_, err := d.SendEmail(context.Background(), SendEmailParams{
		ProjectID: "proj-1",
		ToEmail:   "JANE@example.com",
		Body:      "hello",
	})
	if !errors.Is(err, ErrDoNotContact) {
		t.Fatalf("expected ErrDoNotContact, got %v", err)
	}
	if email.calls != 0 {
		t.Error("provider called for blocked recipient")
	}
}

func TestSendWithoutProvider(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := database.NewStore(db)
	registry := dnc.NewRegistry(store, zap.NewNop())

	d := NewDispatcher(store, registry, nil, nil, zap.NewNop())

	if _, err := d.SendSMS(context.Background(), SendSMSParams{
		ProjectID: "proj-1", ToPhone: "+15550100", Body: "hi",
	}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		length   int
		expected int
	}{
		{0, 1},
		{1, 1},
		{160, 1},
		{161, 2},
		{306, 2},
		{307, 3},
		{459, 3},
		{460, 4},
	}

	for _, tt := range tests {
		body := strings.Repeat("a", tt.length)
		if got := Segments(body); got != tt.expected {
			t.Errorf("Segments(len %d) = %d, expected %d", tt.length, got, tt.expected)
		}
	}
}
