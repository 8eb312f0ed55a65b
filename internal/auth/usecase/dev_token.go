package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

type DevTokenInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Username string `validate:"required"`
	Contact  string
	Role     string
}

// DevToken mints a session for an arbitrary identity. It only works when the
// app runs in development or test.
func (s *Usecase) DevToken(ctx context.Context, in DevTokenInput) (*Session, error) {
	ctx, span := s.startSpan(ctx, "DevToken")
	defer span.End()

	if !s.IsDevelopment() {
		return nil, goerror.NewBusiness("endpoint not found", goerror.CodeNotFound)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	id := jwt.Identity{UserID: in.UserID, Username: in.Username, Contact: in.Contact, Role: in.Role}
	tokens, err := jwt.IssueSession(s.codec, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue dev session", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "dev token issued", "user_id", in.UserID)

	return &Session{
		User:         UserResponse{UserID: id.UserID, Username: id.Username, Contact: id.Contact, Role: id.Role},
		SessionToken: tokens.Session,
		DeviceToken:  tokens.Device,
	}, nil
}
