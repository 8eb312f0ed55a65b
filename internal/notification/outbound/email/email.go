package email

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "notification.outbound.email"

// Mail hands rendered OTP mail to the configured provider under a span.
type Mail struct {
	client mail.Mail
	tracer trace.Tracer
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, tracer: ins.Tracer(tracerName)}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) (err error) {
	ctx, span := m.tracer.Start(ctx, "Send", trace.WithAttributes(
		attribute.Int("mail.recipients", len(msg.To)+len(msg.Cc)+len(msg.Bcc)),
		attribute.Bool("mail.html", msg.HTMLBody != ""),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "mail delivery failed")
		}
		span.End()
	}()

	return m.client.Send(ctx, msg)
}
