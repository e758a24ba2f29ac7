package usecase

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/memory"
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
	"github.com/shandysiswandi/easymed/internal/pkg/valueobject"
)

const testConfig = `
jwt:
  ttl_minutes: 60
modules:
  auth:
    dev_otp_enabled: true
    otp:
      ttl_minutes: 5
      max_attempts: 3
    registration:
      pending_ttl_minutes: 60
    admin:
      organization: "EasyMed Ops"
      phones: "+919060328119"
      emails: "admin@easymed.in, ops@easymed.in"
      passwords: "admin123"
`

var reCode = regexp.MustCompile(`\d{6}`)

type fakeMessaging struct {
	mu         sync.Mutex
	registered []UserRegisteredEvent
	loggedIn   []UserLoggedInEvent
	admins     []AdminSignedInEvent
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, msg)
	return nil
}

func (f *fakeMessaging) PublishUserLoggedIn(_ context.Context, msg UserLoggedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = append(f.loggedIn, msg)
	return nil
}

func (f *fakeMessaging) PublishAdminSignedIn(_ context.Context, msg AdminSignedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins = append(f.admins, msg)
	return nil
}

type fakeSnapshot struct {
	mu    sync.Mutex
	users []entity.User
	saves int
}

func (f *fakeSnapshot) Load(context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, nil
}

func (f *fakeSnapshot) Save(_ context.Context, users []entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = users
	f.saves++
	return nil
}

type fakeHealthID struct {
	profile *entity.HealthProfile
	err     error
}

func (f fakeHealthID) FetchProfile(context.Context, string) (*entity.HealthProfile, error) {
	return f.profile, f.err
}

type harness struct {
	uc        *Usecase
	clock     *clock.Manual
	sms       *sms.Simulated
	directory *memory.Directory
	state     *memory.State
	mq        *fakeMessaging
	snapshot  *fakeSnapshot
	jwt       jwt.JWT
}

func newHarness(t *testing.T, yaml string, opts ...func(*Dependency)) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	enforcer, err := authz.NewEnforcer([]string{"admin:*:*", "doctor:auth.users:read"})
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}

	clk := clock.NewManual(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	uuid := uid.NewUUID()

	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "easymed-test",
		Audiences: []string{"easymed"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uuid,
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	h := &harness{
		clock:     clk,
		sms:       sms.NewSimulated(sms.SimulatedConfig{Clock: clk}),
		directory: memory.NewDirectory(),
		state:     memory.NewState(),
		mq:        &fakeMessaging{},
		snapshot:  &fakeSnapshot{},
		jwt:       tokens,
	}

	dep := Dependency{
		RepoDirectory: h.directory,
		RepoState:     h.state,
		RepoSnapshot:  h.snapshot,
		RepoMessaging: h.mq,
		HealthID: fakeHealthID{profile: &entity.HealthProfile{
			Reference: "91-0000-1111-2222",
			Data:      valueobject.JSONMap{"abha_number": "91-0000-1111-2222"},
		}},
		SMS:        h.sms,
		SMSInbox:   h.sms,
		Locker:     keylock.NewMemory(),
		OTP:        otp.NewRandom(6),
		HMAC:       hash.NewHMACSHA256("otp-secret"),
		AdminHash:  hash.NewAuto(""),
		UID:        sf,
		UUID:       uuid,
		Clock:      clk,
		JWT:        tokens,
		Validator:  v,
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		Enforcer:   enforcer,
	}
	for _, opt := range opts {
		opt(&dep)
	}
	h.uc = New(dep)

	return h
}

// slowDirectory pauses after every lookup so unsynchronized read-modify-write
// sequences interleave.
type slowDirectory struct {
	repoDirectory
	delay time.Duration
}

func (d *slowDirectory) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := d.repoDirectory.GetByID(ctx, id)
	time.Sleep(d.delay)
	return u, err
}

func (d *slowDirectory) FindByPhone(ctx context.Context, phone entity.Phone) (*entity.User, error) {
	u, err := d.repoDirectory.FindByPhone(ctx, phone)
	time.Sleep(d.delay)
	return u, err
}

func (d *slowDirectory) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := d.repoDirectory.FindByEmail(ctx, email)
	time.Sleep(d.delay)
	return u, err
}

func withSlowDirectory(delay time.Duration) func(*Dependency) {
	return func(d *Dependency) {
		d.RepoDirectory = &slowDirectory{repoDirectory: d.RepoDirectory, delay: delay}
	}
}

// lastCode extracts the code from the last SMS sent to phone.
func (h *harness) lastCode(t *testing.T, phone string) string {
	t.Helper()

	msg, ok := h.sms.LastMessage(phone)
	if !ok {
		t.Fatalf("no sms delivered to %s", phone)
	}

	code := reCode.FindString(msg.Body)
	if code == "" {
		t.Fatalf("no code in sms body %q", msg.Body)
	}

	return code
}

func (h *harness) login(t *testing.T, phone string) *VerifyAndLoginOutput {
	t.Helper()

	ctx := context.Background()
	if _, err := h.uc.SendCode(ctx, SendCodeInput{Phone: phone}); err != nil {
		t.Fatalf("send code: %v", err)
	}

	canonical, err := entity.NormalizePhone(phone)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	out, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: phone, Code: h.lastCode(t, canonical.String())})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	return out
}

func asUser(u entity.User) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: u.ID, Role: u.Role.String()})
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with code %v, got nil", want)
	}
	if got := goerror.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
