package outreach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/internal/dnc"
	"talentreach/pkg/models"
)

// ReplyIntent is a coarse classification of an inbound reply.
type ReplyIntent string

const (
	IntentPositive  ReplyIntent = "positive"
	IntentNegative  ReplyIntent = "negative"
	IntentAmbiguous ReplyIntent = "ambiguous"
)

// Negative keywords win over positive ones: "no thanks" must not read as
// gratitude.
var negativeKeywords = []string{
	"not interested", "no thanks", "no thank you", "don't contact",
	"do not contact", "stop", "unsubscribe", "wrong number", "remove me",
	"leave me alone", "not looking",
}

var positiveKeywords = []string{
	"interested", "yes", "sure", "sounds good", "tell me more",
	"when can we", "call me", "let's talk", "lets talk", "i'm available",
	"im available", "happy to",
}

// Hard opt-out phrases that put the sender on the do-not-contact list.
var optOutKeywords = []string{
	"stop", "unsubscribe", "opt out", "optout", "do not contact", "remove",
}

// ClassifyIntent buckets a reply body by keyword.
func ClassifyIntent(body string) ReplyIntent {
	lower := strings.ToLower(body)
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return IntentNegative
		}
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			return IntentPositive
		}
	}
	return IntentAmbiguous
}

// IsOptOut reports whether a reply is an explicit opt-out request.
func IsOptOut(body string) bool {
	lower := strings.ToLower(strings.TrimSpace(body))
	for _, kw := range optOutKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ReplyPoller fetches inbound SMS replies from the provider, records them in
// the message log, flags opt-outs and notifies the workflow engine.
type ReplyPoller struct {
	store    *database.Store
	fetcher  InboundFetcher
	registry *dnc.Registry
	notifier WorkflowNotifier
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	since   map[string]time.Time
}

func NewReplyPoller(store *database.Store, fetcher InboundFetcher, registry *dnc.Registry, interval time.Duration, log *zap.Logger) *ReplyPoller {
	return &ReplyPoller{
		store:    store,
		fetcher:  fetcher,
		registry: registry,
		interval: interval,
		log:      log,
		cancels:  make(map[string]context.CancelFunc),
		since:    make(map[string]time.Time),
	}
}

// SetNotifier registers the workflow callback for inbound replies.
func (p *ReplyPoller) SetNotifier(n WorkflowNotifier) {
	p.notifier = n
}

// Start begins polling replies for a project. Restarts an existing loop.
func (p *ReplyPoller) Start(ctx context.Context, projectID string) {
	p.mu.Lock()
	if cancel, ok := p.cancels[projectID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancels[projectID] = cancel
	if _, ok := p.since[projectID]; !ok {
		p.since[projectID] = time.Now().UTC().Add(-24 * time.Hour)
	}
	p.mu.Unlock()

	go p.run(ctx, projectID)
}

// Stop halts reply polling for a project.
func (p *ReplyPoller) Stop(projectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.cancels[projectID]; ok {
		cancel()
		delete(p.cancels, projectID)
	}
}

// StopAll halts every reply loop.
func (p *ReplyPoller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, cancel := range p.cancels {
		cancel()
		delete(p.cancels, id)
	}
}

func (p *ReplyPoller) run(ctx context.Context, projectID string) {
	p.log.Info("reply poller started",
		zap.String("project_id", projectID),
		zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("reply poller stopped", zap.String("project_id", projectID))
			return
		case <-ticker.C:
			p.Poll(ctx, projectID)
		}
	}
}

// Poll runs one inbound fetch cycle for a project.
func (p *ReplyPoller) Poll(ctx context.Context, projectID string) {
	p.mu.Lock()
	since := p.since[projectID]
	p.mu.Unlock()

	replies, err := p.fetcher.FetchInbound(ctx, since)
	if err != nil {
		p.log.Error("inbound fetch failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}

	latest := since
	for _, reply := range replies {
		if reply.ReceivedAt.After(latest) {
			latest = reply.ReceivedAt
		}
		if err := p.handleReply(projectID, reply); err != nil {
			p.log.Error("inbound reply handling failed",
				zap.String("project_id", projectID),
				zap.String("provider_message_id", reply.ProviderID),
				zap.Error(err))
		}
	}

	p.mu.Lock()
	p.since[projectID] = latest
	p.mu.Unlock()
}

// handleReply records one inbound message. Replies already seen by provider
// id are skipped, which makes overlapping poll windows safe.
func (p *ReplyPoller) handleReply(projectID string, reply InboundMessage) error {
	seen, err := p.store.MessageExistsByProviderID(reply.ProviderID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	var cvID string
	candidate, err := p.store.FindCandidateByPhone(projectID, reply.From)
	switch {
	case err == nil:
		cvID = candidate.ID
	case errors.Is(err, database.ErrNotFound):
		p.log.Warn("inbound reply from unknown number",
			zap.String("project_id", projectID))
	default:
		return err
	}

	msg := &models.Message{
		ProjectID:         projectID,
		CVID:              cvID,
		Type:              models.MessageTypeSMS,
		Direction:         models.DirectionInbound,
		Status:            models.MessageReceived,
		FromAddress:       reply.From,
		ToAddress:         reply.To,
		Body:              reply.Body,
		ProviderMessageID: reply.ProviderID,
	}
	if err := p.store.CreateMessage(msg); err != nil {
		return err
	}

	intent := ClassifyIntent(reply.Body)
	p.log.Info("inbound reply recorded",
		zap.String("message_id", msg.ID),
		zap.String("cv_id", cvID),
		zap.String("intent", string(intent)))

	if IsOptOut(reply.Body) {
		if _, err := p.registry.Add(models.DNCPhone, reply.From, models.DNCOptOut); err != nil {
			p.log.Error("opt-out registration failed", zap.Error(err))
		}
	}

	if p.notifier != nil && cvID != "" {
		p.notifier.InboundReceived(projectID, cvID, reply.Body, reply.ReceivedAt)
	}
	return nil
}
