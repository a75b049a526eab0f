package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"talentreach/pkg/models"
)

// createTestStore opens a temporary database with migrations applied
func createTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestCreateAndGetCandidate(t *testing.T) {
	store := createTestStore(t)

	c := &models.WorkflowCandidate{
		ID:         "cv-1",
		ProjectID:  "proj-1",
		Name:       "Jane Smith",
		Phone:      "+15550100",
		Email:      "jane@example.com",
		MatchScore: 82,
		Status:     models.StatusPending,
	}
	if err := store.CreateCandidate(c); err != nil {
		t.Fatalf("failed to create candidate: %v", err)
	}

	got, err := store.GetProjectCandidate("proj-1", "cv-1")
	if err != nil {
		t.Fatalf("failed to get candidate: %v", err)
	}
	if got.Name != c.Name || got.MatchScore != c.MatchScore || got.Status != models.StatusPending {
		t.Error("retrieved candidate data doesn't match")
	}

	if _, err := store.GetProjectCandidate("proj-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListCandidatesOrderedByScore(t *testing.T) {
	store := createTestStore(t)

	scores := map[string]int{"cv-low": 20, "cv-high": 90, "cv-mid": 55}
	for id, score := range scores {
		c := &models.WorkflowCandidate{ID: id, ProjectID: "proj-1", Name: id, MatchScore: score}
		if err := store.CreateCandidate(c); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	candidates, err := store.ListCandidatesByProject("proj-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != "cv-high" || candidates[2].ID != "cv-low" {
		t.Errorf("candidates not ordered by score: %s, %s, %s",
			candidates[0].ID, candidates[1].ID, candidates[2].ID)
	}
}

func TestUpdateCandidateStatus(t *testing.T) {
	store := createTestStore(t)

	c := &models.WorkflowCandidate{ID: "cv-1", ProjectID: "proj-1", Name: "Jane"}
	store.CreateCandidate(c)

	if err := store.UpdateCandidateStatus("proj-1", "cv-1", models.StatusPaused, models.StatusContacted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ := store.GetProjectCandidate("proj-1", "cv-1")
	if got.Status != models.StatusPaused {
		t.Errorf("expected paused, got %s", got.Status)
	}
	if got.PrePauseStatus != models.StatusContacted {
		t.Errorf("expected pre-pause contacted, got %q", got.PrePauseStatus)
	}

	// Clearing the pre-pause status
	if err := store.UpdateCandidateStatus("proj-1", "cv-1", models.StatusContacted, ""); err != nil {
		t.Fatalf("restore status: %v", err)
	}
	got, _ = store.GetProjectCandidate("proj-1", "cv-1")
	if got.PrePauseStatus != "" {
		t.Errorf("pre-pause status should be cleared, got %q", got.PrePauseStatus)
	}

	if err := store.UpdateCandidateStatus("proj-1", "missing", models.StatusPaused, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing candidate, got %v", err)
	}
}

func TestFindCandidateByPhone(t *testing.T) {
	store := createTestStore(t)

	c := &models.WorkflowCandidate{ID: "cv-1", ProjectID: "proj-1", Name: "Jane", Phone: "+1 (555) 010-0199"}
	store.CreateCandidate(c)

	tests := []struct {
		name  string
		phone string
		found bool
	}{
		{"exact digits", "15550100199", true},
		{"formatted", "+1 555 010 0199", true},
		{"without country code", "5550100199", true},
		{"different number", "+15550109999", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindCandidateByPhone("proj-1", tt.phone)
			if tt.found {
				if err != nil {
					t.Fatalf("expected match, got %v", err)
				}
				if got.ID != "cv-1" {
					t.Errorf("matched wrong candidate: %s", got.ID)
				}
			} else if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestMessageForwardOnlyTransitions(t *testing.T) {
	store := createTestStore(t)

	m := &models.Message{
		ProjectID: "proj-1",
		CVID:      "cv-1",
		Type:      models.MessageTypeSMS,
		Direction: models.DirectionOutbound,
		Status:    models.MessageQueued,
		ToAddress: "+15550100",
		Body:      "hello",
	}
	if err := store.CreateMessage(m); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if m.ID == "" {
		t.Fatal("message ID not set after creation")
	}

	now := time.Now().UTC()
	if err := store.MarkMessageSent(m.ID, "SM123", now); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := store.MarkMessageDelivered(m.ID, now); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}

	// Terminal: no further transitions
	if err := store.MarkMessageSent(m.ID, "SM456", now); err == nil {
		t.Error("sent after delivered should be rejected")
	}
	if err := store.MarkMessageFailed(m.ID, "boom"); err == nil {
		t.Error("failed after delivered should be rejected")
	}

	got, err := store.GetMessage(m.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if got.Status != models.MessageDelivered {
		t.Errorf("expected delivered, got %s", got.Status)
	}
	if got.ProviderMessageID != "SM123" {
		t.Errorf("provider id overwritten: %s", got.ProviderMessageID)
	}
	if got.DeliveredAt == nil || got.SentAt == nil {
		t.Error("timestamps not recorded")
	}
}

func TestMessageFailedFromQueued(t *testing.T) {
	store := createTestStore(t)

	m := &models.Message{
		ProjectID: "proj-1",
		Type:      models.MessageTypeEmail,
		Direction: models.DirectionOutbound,
		Status:    models.MessageQueued,
		ToAddress: "jane@example.com",
		Body:      "hello",
	}
	store.CreateMessage(m)

	if err := store.MarkMessageFailed(m.ID, "connection refused"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	got, _ := store.GetMessage(m.ID)
	if got.Status != models.MessageFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.ErrorMessage != "connection refused" {
		t.Errorf("error message not recorded: %q", got.ErrorMessage)
	}
}

func TestAwaitingMessages(t *testing.T) {
	store := createTestStore(t)
	now := time.Now().UTC()

	// Sent with provider id: awaiting
	sent := &models.Message{ProjectID: "proj-1", Type: models.MessageTypeSMS,
		Direction: models.DirectionOutbound, Status: models.MessageQueued, ToAddress: "+1", Body: "a"}
	store.CreateMessage(sent)
	store.MarkMessageSent(sent.ID, "SM1", now)

	// Queued without provider id: cannot be polled
	queued := &models.Message{ProjectID: "proj-1", Type: models.MessageTypeSMS,
		Direction: models.DirectionOutbound, Status: models.MessageQueued, ToAddress: "+1", Body: "b"}
	store.CreateMessage(queued)

	// Delivered: terminal
	done := &models.Message{ProjectID: "proj-1", Type: models.MessageTypeSMS,
		Direction: models.DirectionOutbound, Status: models.MessageQueued, ToAddress: "+1", Body: "c"}
	store.CreateMessage(done)
	store.MarkMessageSent(done.ID, "SM2", now)
	store.MarkMessageDelivered(done.ID, now)

	// Inbound: never awaiting
	in := &models.Message{ProjectID: "proj-1", Type: models.MessageTypeSMS,
		Direction: models.DirectionInbound, Status: models.MessageReceived,
		ToAddress: "+1", Body: "d", ProviderMessageID: "SM3"}
	store.CreateMessage(in)

	n, err := store.CountAwaiting("proj-1")
	if err != nil {
		t.Fatalf("count awaiting: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 awaiting, got %d", n)
	}

	msgs, err := store.ListAwaiting("proj-1")
	if err != nil {
		t.Fatalf("list awaiting: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != sent.ID {
		t.Errorf("wrong awaiting set: %v", msgs)
	}
}

func TestMessageExistsByProviderID(t *testing.T) {
	store := createTestStore(t)

	m := &models.Message{ProjectID: "proj-1", Type: models.MessageTypeSMS,
		Direction: models.DirectionInbound, Status: models.MessageReceived,
		ToAddress: "+1", Body: "yes", ProviderMessageID: "SMabc"}
	store.CreateMessage(m)

	exists, err := store.MessageExistsByProviderID("SMabc")
	if err != nil {
		t.Fatalf("exists check: %v", err)
	}
	if !exists {
		t.Error("expected message to exist")
	}

	exists, _ = store.MessageExistsByProviderID("SMother")
	if exists {
		t.Error("unexpected match for unknown provider id")
	}
}

func TestDNCInsertIgnoresDuplicates(t *testing.T) {
	store := createTestStore(t)

	e := &models.DNCEntry{Type: models.DNCPhone, Value: "15550100", Reason: models.DNCManual}
	inserted, err := store.InsertDNC(e)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Error("first insert should report true")
	}

	dup := &models.DNCEntry{Type: models.DNCPhone, Value: "15550100", Reason: models.DNCOptOut}
	inserted, err = store.InsertDNC(dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Error("duplicate insert should report false")
	}

	// Same value under a different type is a distinct entry
	email := &models.DNCEntry{Type: models.DNCEmail, Value: "15550100", Reason: models.DNCManual}
	if inserted, _ := store.InsertDNC(email); !inserted {
		t.Error("same value with different type should insert")
	}

	entries, err := store.ListDNC()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestTemplateSingleDefault(t *testing.T) {
	store := createTestStore(t)

	first := &models.MessageTemplate{ProjectID: "proj-1", Name: "first", Type: models.MessageTypeSMS,
		Body: "hi", IsDefault: true}
	if err := store.CreateTemplate(first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := &models.MessageTemplate{ProjectID: "proj-1", Name: "second", Type: models.MessageTypeSMS,
		Body: "hello", IsDefault: true}
	if err := store.CreateTemplate(second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Email default in the same project is independent
	email := &models.MessageTemplate{ProjectID: "proj-1", Name: "mail", Type: models.MessageTypeEmail,
		Subject: "hi", Body: "hello", IsDefault: true}
	if err := store.CreateTemplate(email); err != nil {
		t.Fatalf("create email: %v", err)
	}

	templates, _ := store.ListTemplatesByProject("proj-1")
	defaults := map[models.MessageType]int{}
	for _, tmpl := range templates {
		if tmpl.IsDefault {
			defaults[tmpl.Type]++
		}
	}
	if defaults[models.MessageTypeSMS] != 1 {
		t.Errorf("expected exactly one sms default, got %d", defaults[models.MessageTypeSMS])
	}
	if defaults[models.MessageTypeEmail] != 1 {
		t.Errorf("expected exactly one email default, got %d", defaults[models.MessageTypeEmail])
	}

	got, _ := store.GetTemplate(second.ID)
	if !got.IsDefault {
		t.Error("newest default should win")
	}
}

func TestJDRoundTrip(t *testing.T) {
	store := createTestStore(t)

	jd := &models.JobDescription{
		Title:   "Backend Engineer",
		Company: "Acme",
		RequiredSkills: []models.SkillRequirement{
			{Skill: "Go", Importance: models.ImportanceRequired},
			{Skill: "PostgreSQL", Importance: models.ImportanceRequired},
		},
		PreferredSkills: []models.SkillRequirement{
			{Skill: "Kubernetes", Importance: models.ImportancePreferred},
		},
	}
	if err := store.CreateJD(jd); err != nil {
		t.Fatalf("create jd: %v", err)
	}

	got, err := store.GetJD(jd.ID)
	if err != nil {
		t.Fatalf("get jd: %v", err)
	}
	if got.Title != jd.Title || len(got.RequiredSkills) != 2 || len(got.PreferredSkills) != 1 {
		t.Error("retrieved jd data doesn't match")
	}

	expanded := []models.ExpandedSkill{{Skill: "Go", Variants: []string{"golang"}}}
	if err := store.UpdateJDExpandedSkills(jd.ID, expanded); err != nil {
		t.Fatalf("update expansions: %v", err)
	}
	got, _ = store.GetJD(jd.ID)
	if len(got.ExpandedSkills) != 1 || got.ExpandedSkills[0].Skill != "Go" {
		t.Errorf("expansions not persisted: %v", got.ExpandedSkills)
	}
}

func TestCVRoundTrip(t *testing.T) {
	store := createTestStore(t)

	cv := &models.CandidateCV{
		Name:   "Jane Smith",
		Email:  "jane@example.com",
		Phone:  "+15550100",
		Skills: []string{"Go", "React", "PostgreSQL"},
	}
	if err := store.CreateCV(cv); err != nil {
		t.Fatalf("create cv: %v", err)
	}

	got, err := store.GetCV(cv.ID)
	if err != nil {
		t.Fatalf("get cv: %v", err)
	}
	if got.Name != cv.Name || len(got.Skills) != 3 {
		t.Error("retrieved cv data doesn't match")
	}
}
