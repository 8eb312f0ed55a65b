package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
)

type LoginPasswordOnlyInput struct {
	Username string `validate:"required"`
	Password string `validate:"required,max=72"`
}

// LoginPasswordOnly compares credentials and nothing else: no tokens, no OTP,
// no delivery.
func (s *Usecase) LoginPasswordOnly(ctx context.Context, in LoginPasswordOnlyInput) (*UserResponse, error) {
	ctx, span := s.startSpan(ctx, "LoginPasswordOnly")
	defer span.End()

	user, err := s.checkPassword(ctx, in)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(*user)
	return &resp, nil
}

func (s *Usecase) checkPassword(ctx context.Context, in LoginPasswordOnlyInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "password login input rejected", "error", err)
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

	if !s.password.Verify(in.Password, hash.Pair{Hash: user.PasswordHash, Salt: user.PasswordSalt}) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewUnauthorized()
	}

	return user, nil
}
