package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/notification/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ConsumeOTPRequestedInput struct {
	UserID           int64  `validate:"required,gt=0"`
	Username         string `validate:"required"`
	Contact          string `validate:"required,max=255"`
	Code             string `validate:"required,numeric"`
	ExpiresInMinutes int    `validate:"gt=0"`
}

// ConsumeOTPRequested delivers a one-time password to the user's contact.
// Malformed input is dropped; delivery errors are returned so the broker can
// redeliver.
func (s *Usecase) ConsumeOTPRequested(ctx context.Context, in ConsumeOTPRequestedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPRequested")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "validation failed", "user_id", in.UserID, "error", err)
		return nil
	}

	d := entity.OTPDelivery{
		UserID:           in.UserID,
		Username:         in.Username,
		Contact:          in.Contact,
		Code:             in.Code,
		ExpiresInMinutes: in.ExpiresInMinutes,
	}

	ch := entity.ChannelFor(d.Contact)
	span.SetAttributes(attribute.String("notification.channel", ch.String()))

	var err error
	switch ch {
	case entity.ChannelEmail:
		err = s.sendOTPEmail(ctx, d)
	case entity.ChannelSMS:
		err = s.sendOTPSMS(ctx, d)
	default:
		slog.WarnContext(ctx, "no delivery channel for contact", "user_id", d.UserID)
		return nil
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to deliver otp", "user_id", d.UserID, "channel", ch.String(), "error", err)
		return err
	}

	slog.InfoContext(ctx, "otp delivered", "user_id", d.UserID, "channel", ch.String())

	return nil
}

func (s *Usecase) otpTemplateData(d entity.OTPDelivery) map[string]any {
	data := s.baseTemplateData()
	data["username"] = d.Username
	data["code"] = d.Code
	data["expires_in_minutes"] = d.ExpiresInMinutes
	return data
}

func (s *Usecase) sendOTPEmail(ctx context.Context, d entity.OTPDelivery) error {
	body, err := render(otpEmailTemplate, s.otpTemplateData(d))
	if err != nil {
		return err
	}

	return s.repoMail.Send(ctx, mail.Message{
		To:       []string{d.Contact},
		Subject:  "Your one-time password",
		TextBody: "Your one-time password is " + d.Code,
		HTMLBody: body,
	})
}

func (s *Usecase) sendOTPSMS(ctx context.Context, d entity.OTPDelivery) error {
	body, err := render(otpSMSTemplate, s.otpTemplateData(d))
	if err != nil {
		return err
	}

	return s.repoSMS.Send(ctx, d.Contact, strings.TrimSpace(body))
}
