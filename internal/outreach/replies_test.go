package outreach

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/internal/dnc"
	"talentreach/pkg/models"
)

type fakeInbound struct {
	replies []InboundMessage
}

func (f *fakeInbound) FetchInbound(ctx context.Context, since time.Time) ([]InboundMessage, error) {
	return f.replies, nil
}

func createTestReplyPoller(t *testing.T, fetcher *fakeInbound) (*ReplyPoller, *database.Store, *dnc.Registry, *fakeNotifier) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	registry := dnc.NewRegistry(store, zap.NewNop())
	notifier := &fakeNotifier{}
	p := NewReplyPoller(store, fetcher, registry, time.Minute, zap.NewNop())
	p.SetNotifier(notifier)
	return p, store, registry, notifier
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		body     string
		expected ReplyIntent
	}{
		{"Yes, I'm interested!", IntentPositive},
		{"sounds good, call me tomorrow", IntentPositive},
		{"Not interested, thanks", IntentNegative},
		{"no thanks", IntentNegative},
		{"STOP", IntentNegative},
		{"wrong number", IntentNegative},
		{"who is this?", IntentAmbiguous},
		{"", IntentAmbiguous},
		// Negative keywords win over positive ones
		{"yes I'm sure I'm not interested", IntentNegative},
	}

	for _, tt := range tests {
		if got := ClassifyIntent(tt.body); got != tt.expected {
			t.Errorf("ClassifyIntent(%q) = %s, expected %s", tt.body, got, tt.expected)
		}
	}
}

func TestIsOptOut(t *testing.T) {
	tests := []struct {
		body     string
		expected bool
	}{
		{"STOP", true},
		{"stop", true},
		{"please unsubscribe me", true},
		{"opt out", true},
		{"do not contact me again", true},
		{"remove me from your list", true},
		{"not interested", false},
		{"maybe later", false},
	}

	for _, tt := range tests {
		if got := IsOptOut(tt.body); got != tt.expected {
			t.Errorf("IsOptOut(%q) = %v, expected %v", tt.body, got, tt.expected)
		}
	}
}

func TestPollRecordsInboundReply(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &fakeInbound{replies: []InboundMessage{
		{ProviderID: "SMin1", From: "+15550100199", To: "+15550000", Body: "Yes, interested!", ReceivedAt: now},
	}}
	p, store, _, notifier := createTestReplyPoller(t, fetcher)

	store.CreateCandidate(&models.WorkflowCandidate{
		ID: "cv-1", ProjectID: "proj-1", Name: "Jane",
		Phone: "+1 (555) 010-0199", Status: models.StatusContacted,
	})

	p.Poll(context.Background(), "proj-1")

	msgs, err := store.ListMessagesByCV("cv-1")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Direction != models.DirectionInbound || m.Status != models.MessageReceived {
		t.Errorf("inbound message recorded as %s/%s", m.Direction, m.Status)
	}
	if m.ProviderMessageID != "SMin1" {
		t.Errorf("provider id not recorded: %q", m.ProviderMessageID)
	}

	if len(notifier.inbound) != 1 || notifier.inbound[0].cvID != "cv-1" {
		t.Error("workflow not notified of inbound reply")
	}
}

func TestPollIdempotentOnProviderID(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &fakeInbound{replies: []InboundMessage{
		{ProviderID: "SMin1", From: "+15550100199", To: "+15550000", Body: "hello", ReceivedAt: now},
	}}
	p, store, _, notifier := createTestReplyPoller(t, fetcher)

	store.CreateCandidate(&models.WorkflowCandidate{
		ID: "cv-1", ProjectID: "proj-1", Name: "Jane",
		Phone: "+15550100199", Status: models.StatusContacted,
	})

	// Overlapping poll windows deliver the same reply twice
	p.Poll(context.Background(), "proj-1")
	p.Poll(context.Background(), "proj-1")

	msgs, _ := store.ListMessagesByCV("cv-1")
	if len(msgs) != 1 {
		t.Errorf("expected 1 message after duplicate polls, got %d", len(msgs))
	}
	if len(notifier.inbound) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.inbound))
	}
}

func TestPollOptOutAddsToRegistry(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &fakeInbound{replies: []InboundMessage{
		{ProviderID: "SMin1", From: "+15550100199", To: "+15550000", Body: "STOP", ReceivedAt: now},
	}}
	p, store, registry, _ := createTestReplyPoller(t, fetcher)

	store.CreateCandidate(&models.WorkflowCandidate{
		ID: "cv-1", ProjectID: "proj-1", Name: "Jane",
		Phone: "+15550100199", Status: models.StatusContacted,
	})

	p.Poll(context.Background(), "proj-1")

	blocked, err := registry.Check(models.DNCPhone, "+15550100199")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !blocked {
		t.Error("opt-out sender not added to the do-not-contact list")
	}

	entries, _ := registry.List()
	if len(entries) != 1 || entries[0].Reason != models.DNCOptOut {
		t.Errorf("expected one opt_out entry, got %v", entries)
	}
}

func TestPollUnknownSenderStillRecorded(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &fakeInbound{replies: []InboundMessage{
		{ProviderID: "SMin1", From: "+15559999999", To: "+15550000", Body: "hi", ReceivedAt: now},
	}}
	p, store, _, notifier := createTestReplyPoller(t, fetcher)

	p.Poll(context.Background(), "proj-1")

	// The message is logged without a candidate; no workflow notification
	exists, _ := store.MessageExistsByProviderID("SMin1")
	if !exists {
		t.Error("reply from unknown sender not recorded")
	}
	if len(notifier.inbound) != 0 {
		t.Error("notification fired without a resolved candidate")
	}
}
