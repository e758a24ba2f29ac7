package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/cipher"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goroutine"
	"github.com/shandysiswandi/easymed/internal/pkg/hash"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/jwt"
	"github.com/shandysiswandi/easymed/internal/pkg/keylock"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/pkg/otp"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
	"github.com/shandysiswandi/easymed/internal/pkg/storage"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/pkg/validator"
)

type healthProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (*entity.HealthProfile, error)
}

// App owns every shared resource and the order they start and stop in.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	adminHash hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.Generator
	jwt       jwt.JWT
	encryptor cipher.Encryptor

	// resources
	dbConn    *pgxpool.Pool
	cacheConn redis.UniversalClient
	locker    keylock.Locker
	mail      mail.Mail
	sms       sms.SMS
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer
	healthID  healthProfileFetcher

	// server
	router     *router.Router
	httpServer *http.Server

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// fatal logs a startup failure and exits. Wiring errors leave the process
// unusable, so there is nothing to unwind.
func fatal(step string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Error("failed to "+step, attrs...)
	os.Exit(1)
}

// New wires the service from configuration and exits the process on any failure.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initKeylock()
	app.initMail()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHealthID()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
