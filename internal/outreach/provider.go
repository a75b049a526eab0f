package outreach

import (
	"context"
	"time"
)

// DeliveryState is the provider-side view of an outbound message.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
)

// SMSProvider sends SMS messages and reports delivery status.
type SMSProvider interface {
	// SendSMS submits a message and returns the provider's message id.
	SendSMS(ctx context.Context, to, body string) (string, error)
	// From returns the configured sender number.
	From() string
}

// EmailProvider sends email messages.
type EmailProvider interface {
	// SendEmail submits a message and returns the provider's message id.
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
	// From returns the configured sender address.
	From() string
}

// StatusFetcher queries the provider for the delivery state of a previously
// accepted message.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, providerMessageID string) (DeliveryState, string, error)
}

// InboundMessage is a reply received at the provider.
type InboundMessage struct {
	ProviderID string
	From       string
	To         string
	Body       string
	ReceivedAt time.Time
}

// InboundFetcher lists replies received at the provider since a point in
// time.
type InboundFetcher interface {
	FetchInbound(ctx context.Context, since time.Time) ([]InboundMessage, error)
}

// Verifier checks that provider credentials are usable.
type Verifier interface {
	Verify(ctx context.Context) error
}

// WorkflowNotifier receives message events that drive candidate state.
// The workflow engine implements it; the indirection keeps dispatch and
// workflow decoupled.
type WorkflowNotifier interface {
	OutboundSent(projectID, cvID, body string, at time.Time)
	InboundReceived(projectID, cvID, body string, at time.Time)
}
