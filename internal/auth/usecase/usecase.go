package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/authz"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/hash"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/jwt"
	"github.com/shandysiswandi/easymed/internal/pkg/keylock"
	"github.com/shandysiswandi/easymed/internal/pkg/otp"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL       = 5 * time.Minute
	defaultSessionTTL   = 5 * time.Minute
	defaultPendingTTL   = 24 * time.Hour
	defaultMaxAttempts  = 5
	defaultOrganization = "EasyMed"
)

// Authorization objects and actions checked against the casbin policies.
const (
	ObjStatus  = "auth.status"
	ObjUsers   = "auth.users"
	ObjProfile = "auth.health_profile"

	ActRead   = "read"
	ActDelete = "delete"
	ActWrite  = "write"
)

type UserRegisteredEvent struct {
	User entity.User
}

type UserLoggedInEvent struct {
	User entity.User
	At   time.Time
}

type AdminSignedInEvent struct {
	User entity.User
	At   time.Time
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, msg UserLoggedInEvent) error
	PublishAdminSignedIn(ctx context.Context, msg AdminSignedInEvent) error
}

type repoDirectory interface {
	Insert(ctx context.Context, u entity.User) error
	Update(ctx context.Context, u entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByPhone(ctx context.Context, phone entity.Phone) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	All(ctx context.Context) ([]entity.User, error)
	Replace(ctx context.Context, users []entity.User) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type repoState interface {
	SaveOTP(ctx context.Context, e entity.OTPEntry) error
	GetOTP(ctx context.Context, phone entity.Phone) (*entity.OTPEntry, error)
	DeleteOTP(ctx context.Context, phone entity.Phone) error

	SaveSession(ctx context.Context, v entity.VerificationSession) error
	GetSession(ctx context.Context, phone entity.Phone) (*entity.VerificationSession, error)
	DeleteSession(ctx context.Context, phone entity.Phone) error
	CountSessions(ctx context.Context, now time.Time) (int, error)

	SavePending(ctx context.Context, v entity.PendingRegistration) error
	GetPending(ctx context.Context, phone entity.Phone) (*entity.PendingRegistration, error)
	DeletePending(ctx context.Context, phone entity.Phone) error
	CountPending(ctx context.Context, now time.Time) (int, error)

	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type repoSnapshot interface {
	Load(ctx context.Context) ([]entity.User, error)
	Save(ctx context.Context, users []entity.User) error
}

type healthID interface {
	FetchProfile(ctx context.Context, userID string) (*entity.HealthProfile, error)
}

type smsInbox interface {
	LastMessage(to string) (sms.Message, bool)
}

type Usecase struct {
	repoDirectory repoDirectory
	repoState     repoState
	repoSnapshot  repoSnapshot
	repoMessaging repoMessaging
	healthID      healthID
	sms           sms.SMS
	smsInbox      smsInbox
	locker        keylock.Locker
	otp           otp.Generator
	hmac          hash.Hash
	adminHash     hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	validator     validator.Validator
	cfg           config.Config
	ins           instrument.Instrumentation
	enforcer      authz.Enforcer
}

type Dependency struct {
	RepoDirectory repoDirectory
	RepoState     repoState
	RepoSnapshot  repoSnapshot
	RepoMessaging repoMessaging
	HealthID      healthID
	SMS           sms.SMS
	// SMSInbox is set only when the transport keeps delivered messages.
	SMSInbox   smsInbox
	Locker     keylock.Locker
	OTP        otp.Generator
	HMAC       hash.Hash
	AdminHash  hash.Hash
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Validator  validator.Validator
	Config     config.Config
	Instrument instrument.Instrumentation
	Enforcer   authz.Enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDirectory: dep.RepoDirectory,
		repoState:     dep.RepoState,
		repoSnapshot:  dep.RepoSnapshot,
		repoMessaging: dep.RepoMessaging,
		healthID:      dep.HealthID,
		sms:           dep.SMS,
		smsInbox:      dep.SMSInbox,
		locker:        dep.Locker,
		otp:           dep.OTP,
		hmac:          dep.HMAC,
		adminHash:     dep.AdminHash,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		validator:     dep.Validator,
		cfg:           dep.Config,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
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

// selfOrAuthorized lets a user act on their own record and otherwise defers to the policies.
func (s *Usecase) selfOrAuthorized(ctx context.Context, userID, obj, act string) error {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}
	if clm.UserID == userID {
		return nil
	}

	_, err = s.authenticatedAndAuthorized(ctx, obj, act)
	return err
}

// lockPhone serializes operations on one canonical phone.
func (s *Usecase) lockPhone(ctx context.Context, phone entity.Phone) (func(), error) {
	return s.lockKey(ctx, "auth:phone:"+phone.String())
}

// lockUser takes the key every writer of u uses: its phone when it has one,
// otherwise its email.
func (s *Usecase) lockUser(ctx context.Context, u entity.User) (func(), error) {
	if u.Phone != "" {
		return s.lockPhone(ctx, u.Phone)
	}
	return s.lockKey(ctx, "auth:email:"+u.Email)
}

func (s *Usecase) lockKey(ctx context.Context, key string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire lock", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}
	return unlock, nil
}

// persist flushes the directory. Failures are logged and never surface to callers.
func (s *Usecase) persist(ctx context.Context) {
	users, err := s.repoDirectory.All(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list users for snapshot", "error", err)
		return
	}

	if err := s.repoSnapshot.Save(ctx, users); err != nil {
		slog.ErrorContext(ctx, "failed to save user snapshot", "users", len(users), "error", err)
	}
}

func (s *Usecase) issueToken(ctx context.Context, u entity.User) (string, time.Time, error) {
	token, err := s.jwt.Generate(jwt.Subject{UserID: u.ID, Role: u.Role.String(), Phone: u.Phone.String()})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", u.ID, "error", err)
		return "", time.Time{}, goerror.NewServer(err)
	}

	return token, s.clock.Now().Add(s.cfg.GetMinute("jwt.ttl_minutes")), nil
}

func (s *Usecase) otpTTL() time.Duration {
	return orDefault(s.cfg.GetMinute("modules.auth.otp.ttl_minutes"), defaultOTPTTL)
}

func (s *Usecase) sessionTTL() time.Duration {
	return orDefault(s.cfg.GetMinute("modules.auth.session.ttl_minutes"), defaultSessionTTL)
}

func (s *Usecase) pendingTTL() time.Duration {
	return orDefault(s.cfg.GetMinute("modules.auth.registration.pending_ttl_minutes"), defaultPendingTTL)
}

// maxAttempts returns the wrong-code limit per entry; 0 means unlimited.
func (s *Usecase) maxAttempts() int {
	if v := strings.TrimSpace(s.cfg.GetString("modules.auth.otp.max_attempts")); v == "" {
		return defaultMaxAttempts
	}
	return max(s.cfg.GetInt("modules.auth.otp.max_attempts"), 0)
}

func (s *Usecase) configList(key string) []string {
	return lo.Compact(lo.Map(s.cfg.GetArray(key), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
