package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"go.opentelemetry.io/otel/attribute"
)

type LoginPasswordInput struct {
	Username string
	Password string
	// DeviceToken is the KnownDevice cookie value; empty when absent.
	DeviceToken string
}

// LoginPasswordOutput holds either a session (BranchTrustedMatch) or an OTP
// challenge (every other branch), never both.
type LoginPasswordOutput struct {
	Branch    entity.LoginBranch
	User      UserResponse
	Session   *Session
	Challenge *Challenge
}

// LoginPassword authenticates by password and lets a device token for the same
// user skip the OTP step. An invalid password fails regardless of the device.
func (s *Usecase) LoginPassword(ctx context.Context, in LoginPasswordInput) (*LoginPasswordOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginPassword")
	defer span.End()

	var trustedUserID int64
	if in.DeviceToken != "" {
		dev, err := jwt.VerifyAs[jwt.DevicePayload](s.codec, in.DeviceToken)
		if err != nil {
			slog.DebugContext(ctx, "device token rejected", "error", err)
		} else {
			trustedUserID = dev.UserID
		}
	}

	user, err := s.checkPassword(ctx, LoginPasswordOnlyInput{Username: in.Username, Password: in.Password})
	if err != nil {
		return nil, err
	}

	branch := entity.BranchUntrusted
	switch {
	case trustedUserID == 0:
	case trustedUserID == user.ID:
		branch = entity.BranchTrustedMatch
	default:
		branch = entity.BranchTrustedMismatch
	}
	span.SetAttributes(attribute.String("login.branch", branch.String()))
	slog.InfoContext(ctx, "password login", "user_id", user.ID, "branch", branch.String())

	out := &LoginPasswordOutput{Branch: branch, User: toUserResponse(*user)}

	if branch.IssuesSession() {
		tokens, err := jwt.IssueSession(s.codec, toIdentity(*user))
		if err != nil {
			slog.ErrorContext(ctx, "failed to issue session", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		out.Session = &Session{
			User:         out.User,
			SessionToken: tokens.Session,
			DeviceToken:  tokens.Device,
		}
		return out, nil
	}

	chal, err := s.issueChallenge(ctx, *user)
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	out.Challenge = chal

	return out, nil
}
