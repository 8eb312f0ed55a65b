package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

const deliveryTimeout = 30 * time.Second

// Challenge is a pending OTP login. Code is plaintext and is only surfaced to
// clients in development.
type Challenge struct {
	Token string
	Code  string
}

// challengeSecret binds a code to the account it was issued for, so a code
// delivered to one user never verifies under another username.
func challengeSecret(username, code string) string {
	return username + "\x00" + code
}

// issueChallenge generates a code for user, hands it to delivery and mints
// the challenge token from its hash pair.
func (s *Usecase) issueChallenge(ctx context.Context, user entity.User) (*Challenge, error) {
	code, err := s.otp.Code()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate one-time password", "user_id", user.ID, "error", err)
		return nil, err
	}

	pair, err := s.otpHash.Hash(challengeSecret(user.Username, code))
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash one-time password", "user_id", user.ID, "error", err)
		return nil, err
	}

	token, err := s.codec.Sign(jwt.ChallengePayload{Hash: pair.Hash, Salt: pair.Salt})
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign challenge token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.deliver(ctx, user, code)

	return &Challenge{Token: token, Code: code}, nil
}

// deliver publishes the code in the background. Failures are logged and
// never reach the caller.
func (s *Usecase) deliver(ctx context.Context, user entity.User, code string) {
	evt := OTPRequestedEvent{
		UserID:   user.ID,
		Username: user.Username,
		Contact:  user.Contact,
		Code:     code,
	}

	if err := s.goroutine.Detach(ctx, "auth.deliver_otp", deliveryTimeout, func(ctx context.Context) error {
		return s.repoMessaging.PublishOTPRequested(ctx, evt)
	}); err != nil {
		slog.WarnContext(ctx, "otp delivery not scheduled", "user_id", user.ID, "error", err)
	}
}
