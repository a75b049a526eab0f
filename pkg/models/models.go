package models

import "time"

// WorkflowStatus is the current stage of a candidate in the outreach pipeline.
type WorkflowStatus string

const (
	StatusPending   WorkflowStatus = "pending"
	StatusContacted WorkflowStatus = "contacted"
	StatusPaused    WorkflowStatus = "paused"
	StatusReplied   WorkflowStatus = "replied"
	StatusScreening WorkflowStatus = "screening"
	StatusPassed    WorkflowStatus = "passed"
	StatusFailed    WorkflowStatus = "failed"
	StatusArchived  WorkflowStatus = "archived"
)

// Terminal reports whether no further workflow actions apply to the status.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusArchived
}

// MessageType is the channel a message was sent or received on.
type MessageType string

const (
	MessageTypeSMS   MessageType = "sms"
	MessageTypeEmail MessageType = "email"
)

// MessageDirection distinguishes outbound sends from inbound replies.
type MessageDirection string

const (
	DirectionOutbound MessageDirection = "outbound"
	DirectionInbound  MessageDirection = "inbound"
)

// MessageStatus tracks delivery state. Outbound messages move forward only:
// queued -> sent -> delivered, or -> failed from any non-terminal state.
// Inbound messages are stored as received, which is terminal.
type MessageStatus string

const (
	MessageQueued    MessageStatus = "queued"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageFailed    MessageStatus = "failed"
	MessageReceived  MessageStatus = "received"
)

// DNCType is the kind of contact address on the do-not-contact list.
type DNCType string

const (
	DNCPhone DNCType = "phone"
	DNCEmail DNCType = "email"
)

// DNCReason records why an address was added to the do-not-contact list.
type DNCReason string

const (
	DNCOptOut DNCReason = "opt_out"
	DNCBounce DNCReason = "bounce"
	DNCManual DNCReason = "manual"
)

// Importance weights a skill requirement within a job description.
type Importance string

const (
	ImportanceRequired   Importance = "required"
	ImportancePreferred  Importance = "preferred"
	ImportanceNiceToHave Importance = "nice-to-have"
)

// SkillRequirement is a single skill extracted from a job description.
type SkillRequirement struct {
	Skill      string     `json:"skill"`
	Importance Importance `json:"importance"`
	Category   string     `json:"category,omitempty"`
}

// ExpandedSkill enriches a requirement with generated aliases and tooling,
// consulted before the static synonym table during matching.
type ExpandedSkill struct {
	Skill        string   `json:"skill"`
	Variants     []string `json:"variants"`
	RelatedTools []string `json:"related_tools"`
}

// JobDescription holds the extracted requirements a CV is matched against.
type JobDescription struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Company         string             `json:"company,omitempty"`
	RequiredSkills  []SkillRequirement `json:"required_skills"`
	PreferredSkills []SkillRequirement `json:"preferred_skills"`
	ExpandedSkills  []ExpandedSkill    `json:"expanded_skills,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// CandidateCV is the structured CV data relevant to matching and outreach.
// Text extraction from the source document happens upstream.
type CandidateCV struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchResult is the outcome of scoring one CV against one job description.
// It is derived data: recomputed on demand and never partially persisted.
type MatchResult struct {
	CVID             string    `json:"cv_id"`
	JDID             string    `json:"jd_id"`
	MatchScore       int       `json:"match_score"`
	MatchedSkills    []string  `json:"matched_skills"`
	MissingRequired  []string  `json:"missing_required"`
	MissingPreferred []string  `json:"missing_preferred"`
	CalculatedAt     time.Time `json:"calculated_at"`
}

// WorkflowCandidate is a CV promoted into the outreach pipeline. Created once
// per (project, cv) pair by graduation, mutated only by workflow transitions
// and message side effects, and never deleted.
type WorkflowCandidate struct {
	ID                 string         `json:"id"` // same as the cv id
	ProjectID          string         `json:"project_id"`
	Name               string         `json:"name"`
	Phone              string         `json:"phone,omitempty"`
	Email              string         `json:"email,omitempty"`
	MatchScore         int            `json:"match_score"`
	Status             WorkflowStatus `json:"status"`
	PrePauseStatus     WorkflowStatus `json:"pre_pause_status,omitempty"`
	LastMessageAt      *time.Time     `json:"last_message_at,omitempty"`
	LastMessageSnippet string         `json:"last_message_snippet,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Message is one entry in the append-only communication log.
type Message struct {
	ID                string           `json:"id"`
	ProjectID         string           `json:"project_id"`
	CVID              string           `json:"cv_id,omitempty"`
	Type              MessageType      `json:"type"`
	Direction         MessageDirection `json:"direction"`
	Status            MessageStatus    `json:"status"`
	FromAddress       string           `json:"from_address,omitempty"`
	ToAddress         string           `json:"to_address"`
	Subject           string           `json:"subject,omitempty"`
	Body              string           `json:"body"`
	TemplateID        string           `json:"template_id,omitempty"`
	ProviderMessageID string           `json:"provider_message_id,omitempty"`
	ErrorMessage      string           `json:"error_message,omitempty"`
	SentAt            *time.Time       `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time       `json:"delivered_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// DNCEntry is one address on the do-not-contact list.
type DNCEntry struct {
	ID        string    `json:"id"`
	Type      DNCType   `json:"type"`
	Value     string    `json:"value"`
	Reason    DNCReason `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageTemplate is a reusable message body with {{variable}} placeholders.
type MessageTemplate struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Name      string      `json:"name"`
	Type      MessageType `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Body      string      `json:"body"`
	IsDefault bool        `json:"is_default"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TemplateVariable describes one entry of the fixed variable catalog
// available for template authoring.
type TemplateVariable struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Example  string `json:"example"`
	Category string `json:"category"` // candidate, role, recruiter
}

// GraduationResult partitions a batch graduation into per-item outcomes.
type GraduationResult struct {
	Success []string            `json:"success"`
	Failed  []GraduationFailure `json:"failed"`
}

// GraduationFailure records why a single candidate could not be graduated.
type GraduationFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
