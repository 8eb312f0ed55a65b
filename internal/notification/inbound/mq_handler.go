package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/notification/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if id := msg.Header(event.HeaderCorrelationID); id != "" {
		return instrument.SetCorrelationID(ctx, id)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPRequestedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPRequestedNotification")
	defer span.End()

	body := msg.Body()

	var payload event.OTPRequestedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		// redelivery cannot fix a malformed body
		slog.ErrorContext(ctx, "failed to parse message body of otp requested", "topic", msg.Topic(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: otp requested", "user_id", payload.UserID)

	if err := h.uc.ConsumeOTPRequested(ctx, usecase.ConsumeOTPRequestedInput{
		UserID:           payload.UserID,
		Username:         payload.Username,
		Contact:          payload.Contact,
		Code:             payload.Code,
		ExpiresInMinutes: payload.ExpiresInMinutes,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp requested", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
