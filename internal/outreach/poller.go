package outreach

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
)

// DeliveryPoller periodically reconciles provider delivery status for
// outbound messages still awaiting a terminal state. One polling loop runs
// per project.
type DeliveryPoller struct {
	store    *database.Store
	fetcher  StatusFetcher
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewDeliveryPoller(store *database.Store, fetcher StatusFetcher, interval time.Duration, log *zap.Logger) *DeliveryPoller {
	return &DeliveryPoller{
		store:    store,
		fetcher:  fetcher,
		interval: interval,
		log:      log,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start begins polling for a project. Starting an already-running project
// restarts its loop.
func (p *DeliveryPoller) Start(ctx context.Context, projectID string) {
	p.mu.Lock()
	if cancel, ok := p.cancels[projectID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancels[projectID] = cancel
	p.mu.Unlock()

	go p.run(ctx, projectID)
}

// Stop halts polling for a project. Unknown projects are a no-op.
func (p *DeliveryPoller) Stop(projectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.cancels[projectID]; ok {
		cancel()
		delete(p.cancels, projectID)
	}
}

// StopAll halts every polling loop.
func (p *DeliveryPoller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, cancel := range p.cancels {
		cancel()
		delete(p.cancels, id)
	}
}

func (p *DeliveryPoller) run(ctx context.Context, projectID string) {
	p.log.Info("delivery poller started",
		zap.String("project_id", projectID),
		zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("delivery poller stopped", zap.String("project_id", projectID))
			return
		case <-ticker.C:
			p.poll(ctx, projectID)
		}
	}
}

// poll runs one reconciliation cycle. Messages that are still pending at the
// provider are left untouched for the next cycle.
func (p *DeliveryPoller) poll(ctx context.Context, projectID string) {
	count, err := p.store.CountAwaiting(projectID)
	if err != nil {
		p.log.Error("delivery poll count failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	if count == 0 {
		return
	}

	msgs, err := p.store.ListAwaiting(projectID)
	if err != nil {
		p.log.Error("delivery poll list failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}

	for _, msg := range msgs {
		if ctx.Err() != nil {
			return
		}
		state, detail, err := p.fetcher.FetchStatus(ctx, msg.ProviderMessageID)
		if err != nil {
			p.log.Warn("delivery status fetch failed",
				zap.String("message_id", msg.ID),
				zap.String("provider_message_id", msg.ProviderMessageID),
				zap.Error(err))
			continue
		}
		switch state {
		case DeliveryDelivered:
			if err := p.store.MarkMessageDelivered(msg.ID, time.Now().UTC()); err != nil {
				p.log.Error("mark delivered failed", zap.String("message_id", msg.ID), zap.Error(err))
				continue
			}
			p.log.Info("message delivered", zap.String("message_id", msg.ID))
		case DeliveryFailed:
			if detail == "" {
				detail = "delivery failed"
			}
			if err := p.store.MarkMessageFailed(msg.ID, detail); err != nil {
				p.log.Error("mark failed failed", zap.String("message_id", msg.ID), zap.Error(err))
				continue
			}
			p.log.Warn("message delivery failed",
				zap.String("message_id", msg.ID),
				zap.String("detail", detail))
		case DeliveryPending:
			// still in flight
		}
	}
}
