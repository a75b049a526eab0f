package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioProvider implements SMS sending, delivery status lookup and inbound
// listing against the Twilio REST API.
type TwilioProvider struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioProvider builds a provider from account credentials and the
// sender number.
func NewTwilioProvider(accountSID, authToken, fromNumber string) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioProvider{client: client, from: fromNumber}
}

func (p *TwilioProvider) From() string {
	return p.from
}

// SendSMS submits a message and returns the provider SID.
func (p *TwilioProvider) SendSMS(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.from)
	params.SetBody(body)

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("provider returned no message sid")
	}
	return *resp.Sid, nil
}

// FetchStatus maps Twilio message status to a delivery state.
func (p *TwilioProvider) FetchStatus(ctx context.Context, providerMessageID string) (DeliveryState, string, error) {
	resp, err := p.client.Api.FetchMessage(providerMessageID, &twilioApi.FetchMessageParams{})
	if err != nil {
		return DeliveryPending, "", err
	}
	if resp.Status == nil {
		return DeliveryPending, "", nil
	}

	switch *resp.Status {
	case "delivered":
		return DeliveryDelivered, "", nil
	case "failed", "undelivered":
		reason := "delivery failed"
		if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
			reason = *resp.ErrorMessage
		}
		return DeliveryFailed, reason, nil
	default:
		// queued, accepted, sending, sent: still in flight
		return DeliveryPending, "", nil
	}
}

// FetchInbound lists messages received at the sender number since the given
// time.
func (p *TwilioProvider) FetchInbound(ctx context.Context, since time.Time) ([]InboundMessage, error) {
	params := &twilioApi.ListMessageParams{}
	params.SetTo(p.from)
	params.SetDateSentAfter(since)
	params.SetLimit(100)

	messages, err := p.client.Api.ListMessage(params)
	if err != nil {
		return nil, err
	}

	var out []InboundMessage
	for _, m := range messages {
		if m.Direction == nil || *m.Direction != "inbound" {
			continue
		}
		if m.Sid == nil {
			continue
		}
		msg := InboundMessage{ProviderID: *m.Sid, ReceivedAt: time.Now().UTC()}
		if m.From != nil {
			msg.From = *m.From
		}
		if m.To != nil {
			msg.To = *m.To
		}
		if m.Body != nil {
			msg.Body = *m.Body
		}
		if m.DateSent != nil {
			if t, err := time.Parse(time.RFC1123Z, *m.DateSent); err == nil {
				msg.ReceivedAt = t
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

// Verify confirms the credentials by listing a single message.
func (p *TwilioProvider) Verify(ctx context.Context) error {
	params := &twilioApi.ListMessageParams{}
	params.SetLimit(1)
	if _, err := p.client.Api.ListMessage(params); err != nil {
		return fmt.Errorf("twilio credentials rejected: %w", err)
	}
	return nil
}
