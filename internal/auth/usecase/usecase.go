package usecase

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OTPRequestedEvent is handed to the delivery collaborator. It carries the
// plaintext code, which exists nowhere else once the request returns.
type OTPRequestedEvent struct {
	UserID   int64
	Username string
	Contact  string
	Code     string
}

type repoMessaging interface {
	PublishOTPRequested(ctx context.Context, msg OTPRequestedEvent) error
}

type repoDB interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserList(ctx context.Context) ([]entity.User, error)

	CreateUser(ctx context.Context, in entity.NewUser) (*entity.User, error)
	UpdateUserPassword(ctx context.Context, id int64, pair hash.Pair) error
	DeleteUser(ctx context.Context, id int64) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	password      hash.Hasher
	otpHash       hash.Hasher
	otp           otp.Generator
	uid           uid.NumberID
	codec         jwt.Codec
	ins           instrument.Instrumentation
	enforcer      enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	// Password hashes user passwords (argon2id).
	Password hash.Hasher
	// OTPHash hashes one-time passwords (keyed HMAC-SHA256).
	OTPHash    hash.Hasher
	OTP        otp.Generator
	UID        uid.NumberID
	Codec      jwt.Codec
	Instrument instrument.Instrumentation
	Enforcer   enforcer
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		password:      dep.Password,
		otpHash:       dep.OTPHash,
		otp:           dep.OTP,
		uid:           dep.UID,
		codec:         dep.Codec,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsDevelopment reports whether diagnostic responses and the dev-token
// endpoint are enabled.
func (s *Usecase) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(s.cfg.GetString("app.env")))
	return slices.Contains([]string{"development", "test"}, env)
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Identity, error) {
	id := jwt.GetAuth(ctx)
	if id == nil {
		return nil, goerror.NewUnauthorized()
	}

	ok, err := s.enforcer.Enforce(id.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", id.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "user not allowed", "user_id", id.UserID, "role", id.Role, "object", obj, "action", act)
		return nil, goerror.NewForbidden()
	}

	return id, nil
}

// UserResponse is the public shape of a user; it never carries credentials.
type UserResponse struct {
	UserID   int64
	Username string
	Contact  string
	Role     string
}

func toUserResponse(u entity.User) UserResponse {
	return UserResponse{
		UserID:   u.ID,
		Username: u.Username,
		Contact:  u.Contact,
		Role:     u.Role.String(),
	}
}

func toIdentity(u entity.User) jwt.Identity {
	return jwt.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Contact:  u.Contact,
		Role:     u.Role.String(),
	}
}
