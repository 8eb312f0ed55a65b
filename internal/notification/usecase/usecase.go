package usecase

import (
	"bytes"
	"context"
	"embed"
	"io"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	otpEmailTemplate = htmltemplate.Must(htmltemplate.New("otp_email.html").Option("missingkey=zero").ParseFS(templatesFS, "templates/otp_email.html"))
	otpSMSTemplate   = texttemplate.Must(texttemplate.New("otp_sms.txt").Option("missingkey=zero").ParseFS(templatesFS, "templates/otp_sms.txt"))
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoSMS interface {
	Send(ctx context.Context, to, body string) error
}

type Usecase struct {
	cfg       config.Config
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	repoSMS   repoSMS
	ins       instrument.Instrumentation
}

type Dependency struct {
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	RepoSMS    repoSMS
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		cfg:       dep.Config,
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		repoSMS:   dep.RepoSMS,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func render(t executor, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseTemplateData() map[string]any {
	company := s.cfg.GetString("modules.notification.company_name")
	if company == "" {
		company = "otpauth"
	}

	return map[string]any{
		"company_name": company,
		"year":         s.clock.Now().Format("2006"),
	}
}
