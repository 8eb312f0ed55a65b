package sms

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

// Gateway hands text messages to the external SMS gateway through the
// sms_outbound topic.
type Gateway struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func New(client messaging.Publisher, ins instrument.Instrumentation) *Gateway {
	return &Gateway{client: client, ins: ins}
}

func (g *Gateway) Send(ctx context.Context, to, body string) error {
	ctx, span := g.ins.Tracer("notification.outbound.sms").Start(ctx, "Send")
	defer span.End()

	payload, err := json.Marshal(event.SMSOutboundMessage{To: to, Body: body})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := g.client.Publish(ctx, event.SMSOutboundDestination, messaging.Outgoing{
		Body:    payload,
		Key:     []byte(to),
		Headers: map[string]string{event.HeaderCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
