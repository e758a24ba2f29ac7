package notification

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/notification/inbound"
	"github.com/shandysiswandi/easymed/internal/notification/outbound/email"
	"github.com/shandysiswandi/easymed/internal/notification/outbound/memory"
	"github.com/shandysiswandi/easymed/internal/notification/outbound/sms"
	"github.com/shandysiswandi/easymed/internal/notification/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/authz"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goroutine"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
	pkgsms "github.com/shandysiswandi/easymed/internal/pkg/sms"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/pkg/validator"
)

type Dependency struct {
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	SMS        pkgsms.SMS                 `validate:"required"`
	Enforcer   authz.Enforcer             `validate:"required"`
}

// New wires the notification module and starts its consumers on dep.Goroutine
// until ctx is done.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.NewNotification(usecase.Dependency{
		RepoLog:    memory.NewDeliveryLog(dep.Config.GetInt("modules.notification.delivery_log_capacity")),
		RepoMail:   email.New(dep.Mail, dep.Instrument),
		RepoSMS:    sms.New(dep.SMS, dep.Instrument),
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
		Enforcer:   dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	started := inbound.RegisterMQConsumer(ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	slog.InfoContext(ctx, "notification consumers started", "count", started)

	return uc, nil
}
