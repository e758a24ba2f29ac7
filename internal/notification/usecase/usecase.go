package usecase

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/authz"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/jwt"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Authorization object checked against the casbin policies.
const ObjDeliveries = "notification.deliveries"

type repoLog interface {
	CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) error
	UpdateDeliveryLogStatus(ctx context.Context, dl entity.DeliveryLog) error
	ListDeliveryLogs(ctx context.Context, limit int) ([]entity.DeliveryLog, error)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoSMS interface {
	Send(ctx context.Context, to, body string) error
}

type Usecase struct {
	repoLog   repoLog
	repoMail  repoMail
	repoSMS   repoSMS
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	enforcer  authz.Enforcer
	templates map[templateKey]entity.Template
}

type Dependency struct {
	RepoLog    repoLog
	RepoMail   repoMail
	RepoSMS    repoSMS
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
	Enforcer   authz.Enforcer
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		repoLog:   dep.RepoLog,
		repoMail:  dep.RepoMail,
		repoSMS:   dep.RepoSMS,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		enforcer:  dep.Enforcer,
		templates: defaultTemplates(),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) requireAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

func (s *Usecase) render(name string, ch entity.Channel, tpl string, data map[string]any) (string, error) {
	var buf bytes.Buffer

	if ch == entity.ChannelEmail {
		t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tpl)
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	t, err := texttemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) supportEmail() string {
	if support := s.cfg.GetString("modules.notification.support_email"); support != "" {
		return support
	}
	return "support@easymed.in"
}

func (s *Usecase) baseTemplateData() map[string]any {
	return map[string]any{
		"support_email": s.supportEmail(),
		"company_name":  "EasyMed",
		"year":          s.clock.Now().Format("2006"),
	}
}
