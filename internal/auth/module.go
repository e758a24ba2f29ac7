package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/auth/inbound"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/cache"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/memory"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/mq"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/snapshot"
	"github.com/shandysiswandi/easymed/internal/auth/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/authz"
	"github.com/shandysiswandi/easymed/internal/pkg/cipher"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goroutine"
	"github.com/shandysiswandi/easymed/internal/pkg/hash"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/jwt"
	"github.com/shandysiswandi/easymed/internal/pkg/keylock"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/pkg/otp"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
	"github.com/shandysiswandi/easymed/internal/pkg/storage"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/pkg/validator"
)

const (
	StateDriverMemory = "memory"
	StateDriverRedis  = "redis"
)

var (
	// ErrCacheRequired is returned when the redis state driver is selected without a client.
	ErrCacheRequired = errors.New("auth: redis state driver requires a cache connection")
	// ErrUnknownStateDriver is returned for an unsupported modules.auth.state.driver.
	ErrUnknownStateDriver = errors.New("auth: unknown state driver")
)

type healthProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (*entity.HealthProfile, error)
}

type Dependency struct {
	// CacheConn backs the redis state driver and may be nil otherwise.
	CacheConn  redis.UniversalClient
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   authz.Enforcer             `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Locker     keylock.Locker             `validate:"required"`
	SMS        sms.SMS                    `validate:"required"`
	HealthID   healthProfileFetcher       `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	AdminHash  hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	// Encryptor seals the user snapshot at rest when set.
	Encryptor cipher.Encryptor
}

// New wires the auth module, restores the user directory and registers its
// HTTP endpoints. Background maintenance runs on dep.Goroutine until ctx is done.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	ucDep := usecase.Dependency{
		RepoDirectory: memory.NewDirectory(),
		RepoSnapshot: snapshot.New(dep.Storage, dep.Clock, dep.Instrument, snapshot.Config{
			Key:       dep.Config.GetString("modules.auth.snapshot.key"),
			Encryptor: dep.Encryptor,
		}),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		HealthID:      dep.HealthID,
		SMS:           dep.SMS,
		Locker:        dep.Locker,
		OTP:           dep.OTP,
		HMAC:          dep.HMAC,
		AdminHash:     dep.AdminHash,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	}

	switch driver := dep.Config.GetString("modules.auth.state.driver"); driver {
	case "", StateDriverMemory:
		ucDep.RepoState = memory.NewState()
	case StateDriverRedis:
		if dep.CacheConn == nil {
			return nil, ErrCacheRequired
		}
		ucDep.RepoState = cache.NewState(dep.CacheConn, dep.Clock, dep.Config.GetString("modules.auth.state.prefix"), dep.Instrument)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStateDriver, driver)
	}

	if inbox, ok := dep.SMS.(*sms.Simulated); ok {
		ucDep.SMSInbox = inbox
	}

	uc := usecase.New(ucDep)

	if err := uc.Hydrate(ctx); err != nil {
		return nil, err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	dep.Goroutine.Every(ctx, "auth.sweep", dep.Config.GetSecond("modules.auth.sweep_interval_seconds"), uc.Sweep)

	return uc, nil
}
