package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type RequestOTPInput struct {
	// Identifier is a username, email address or phone number.
	Identifier string `validate:"required,max=255"`
}

func (s *Usecase) RequestOTP(ctx context.Context, in RequestOTPInput) (*Challenge, error) {
	ctx, span := s.startSpan(ctx, "RequestOTP")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "otp request input rejected", "error", err)
		return nil, goerror.NewUnauthorized()
	}

	user, err := s.repoDB.GetUserByIdentifier(ctx, in.Identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp requested for unknown user")
		return nil, goerror.NewUnauthorized()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by identifier", "error", err)
		return nil, goerror.NewServer(err)
	}

	chal, err := s.issueChallenge(ctx, *user)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return chal, nil
}
