package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

type PasswordChangeInput struct {
	CurrentPassword string `validate:"required,max=72"`
	NewPassword     string `validate:"required,password,nefield=CurrentPassword"`
}

func (s *Usecase) PasswordChange(ctx context.Context, in PasswordChangeInput) error {
	ctx, span := s.startSpan(ctx, "PasswordChange")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	id := jwt.GetAuth(ctx)
	if id == nil {
		return goerror.NewUnauthorized()
	}

	user, err := s.repoDB.GetUserByID(ctx, id.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", id.UserID)
		return goerror.NewUnauthorized()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", id.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.password.Verify(in.CurrentPassword, hash.Pair{Hash: user.PasswordHash, Salt: user.PasswordSalt}) {
		slog.WarnContext(ctx, "current password mismatch", "user_id", user.ID)
		return goerror.NewUnauthorized()
	}

	pair, err := s.password.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserPassword(ctx, user.ID, pair); err != nil {
		slog.ErrorContext(ctx, "failed to update user password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
