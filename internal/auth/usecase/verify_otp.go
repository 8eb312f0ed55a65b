package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

type VerifyOTPInput struct {
	Username       string `validate:"required"`
	ChallengeToken string
	OTP            string `validate:"required,max=16"`
}

// Session is the result of a completed login.
type Session struct {
	User UserResponse
	// SessionToken is bearer-wrapped.
	SessionToken string
	DeviceToken  string
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*Session, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "otp login input rejected", "error", err)
		return nil, goerror.NewUnauthorized()
	}

	chal, err := jwt.VerifyAs[jwt.ChallengePayload](s.codec, in.ChallengeToken)
	if err != nil {
		slog.WarnContext(ctx, "challenge token rejected", "username", in.Username)
		return nil, goerror.NewUnauthorized()
	}

	if !s.otpHash.Verify(challengeSecret(in.Username, in.OTP), hash.Pair{Hash: chal.Hash, Salt: chal.Salt}) {
		slog.WarnContext(ctx, "one-time password mismatch", "username", in.Username)
		return nil, goerror.NewUnauthorized()
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return nil, goerror.NewUnauthorized()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	tokens, err := jwt.IssueSession(s.codec, toIdentity(*user))
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &Session{
		User:         toUserResponse(*user),
		SessionToken: tokens.Session,
		DeviceToken:  tokens.Device,
	}, nil
}
