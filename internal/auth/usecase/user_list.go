package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

func (s *Usecase) UserList(ctx context.Context) ([]UserResponse, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, entity.PermObjUsers, entity.PermActRead); err != nil {
		return nil, err
	}

	users, err := s.repoDB.GetUserList(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return lo.Map(users, func(u entity.User, _ int) UserResponse {
		return toUserResponse(u)
	}), nil
}
