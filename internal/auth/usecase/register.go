package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/idempotency"
)

type RegisterInput struct {
	// IdempotencyKey deduplicates client retries when set.
	IdempotencyKey string `validate:"omitempty,max=128"`
	Username       string `validate:"required,min=3,max=50,alphanum,username"`
	Contact        string `validate:"required,contact"`
	Password       string `validate:"required,password"`
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Contact = strings.TrimSpace(in.Contact)
	if strings.Contains(in.Contact, "@") {
		in.Contact = strings.ToLower(in.Contact)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" {
		return s.register(ctx, in)
	}

	var resp *UserResponse
	err := s.idemp.Exec(ctx, "auth:register:"+in.IdempotencyKey, func(ctx context.Context) error {
		var err error
		resp, err = s.register(ctx, in)
		return err
	})
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewBusiness("Registration already in progress", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		return nil, goerror.NewBusiness("Registration already processed", goerror.CodeConflict)
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return nil, gerr
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to exec idempotent registration", "error", err)
		return nil, goerror.NewServer(err)
	}

	return resp, nil
}

func (s *Usecase) register(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	pair, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.CreateUser(ctx, entity.NewUser{
		ID:           s.uid.Generate(),
		Username:     in.Username,
		Contact:      in.Contact,
		Role:         entity.RoleUser,
		PasswordHash: pair.Hash,
		PasswordSalt: pair.Salt,
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "username or contact already registered", "username", in.Username)
		return nil, goerror.NewBusiness("Username or contact already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	resp := toUserResponse(*user)
	return &resp, nil
}
