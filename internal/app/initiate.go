package app

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
	authinbound "github.com/shandysiswandi/easymed/internal/auth/inbound"
	"github.com/shandysiswandi/easymed/internal/auth/outbound/healthid"
	"github.com/shandysiswandi/easymed/internal/pkg/authz"
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
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		fatal("init config", err)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		fatal("init instrumentation", err)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.adminHash = hash.NewAuto(a.config.GetString("hash.admin.pepper"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		fatal("init validation v10 validator", err)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(int64(a.config.GetInt("app.node_id")))
	if err != nil {
		fatal("init uid number snowflake", err)
	}
	a.uid = snow

	gen, err := otp.New(a.config.GetString("modules.auth.otp.generator"), otp.DefaultDigits)
	if err != nil {
		fatal("init otp generator", err)
	}
	a.otp = gen

	if raw := strings.TrimSpace(a.config.GetString("modules.auth.snapshot.encryption_key")); raw != "" {
		key, err := cipher.ParseBase64Key(raw)
		if err != nil {
			fatal("init snapshot cipher, key must be base64 of 32 bytes (AES-256)", err)
		}
		a.encryptor = cipher.NewAESGCM(key)
	}
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		fatal("init jwt token", err)
	}
	a.jwt = defaultJWT
}

// initDatabase connects only when the snapshot lives in postgres.
func (a *App) initDatabase() {
	if !strings.EqualFold(a.config.GetString("storage.driver"), storage.DriverPostgres) {
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		fatal("parse DB connection string", err)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		fatal("create DB connection pool", err)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		fatal("ping DB", err)
	}

	a.dbConn = pool
}

// initCache connects only when a component is configured to use redis.
func (a *App) initCache() {
	drivers := []string{
		a.config.GetString("storage.driver"),
		a.config.GetString("keylock.driver"),
		a.config.GetString("modules.auth.state.driver"),
	}
	if !lo.Contains(drivers, "redis") {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		fatal("parse redis url", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		fatal("init redis", err)
	}

	a.cacheConn = rdb
}

func (a *App) initKeylock() {
	switch driver := a.config.GetString("keylock.driver"); driver {
	case "", "memory":
		a.locker = keylock.NewMemory()
	case "redis":
		a.locker = keylock.NewRedis(a.cacheConn, keylock.RedisConfig{
			Prefix:  a.config.GetString("keylock.redis.prefix"),
			TTL:     a.config.GetSecond("keylock.redis.ttl_seconds"),
			MaxWait: a.config.GetSecond("keylock.redis.max_wait_seconds"),
		})
	default:
		fatal("init keylock, unknown driver", nil, "driver", driver)
	}
}

func (a *App) initMail() {
	if a.config.GetString("mail.driver") != "smtp" {
		a.mail = mail.NewLog()
		return
	}

	mail, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
	})
	if err != nil {
		fatal("init mail", err)
	}

	a.mail = mail
}

func (a *App) initSMS() {
	driver := a.config.GetString("sms.driver")
	client, err := sms.NewFromDriver(sms.Config{
		Driver: driver,
		Simulated: sms.SimulatedConfig{
			Delay: time.Duration(a.config.GetInt("sms.simulated.delay_ms")) * time.Millisecond,
			Clock: a.clock,
		},
		Twilio: sms.TwilioConfig{
			AccountSID: a.config.GetString("sms.twilio.account_sid"),
			AuthToken:  a.config.GetString("sms.twilio.auth_token"),
			From:       a.config.GetString("sms.twilio.from"),
		},
	})
	if err != nil {
		fatal("init sms", err, "driver", driver)
	}

	a.sms = client
}

func (a *App) gcsOptions() []option.ClientOption {
	gcsCfg := a.setting("storage.gcs")
	var opts []option.ClientOption
	if a.config.GetBool("storage.gcs.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}

	credentials := a.config.GetBinary("storage.gcs.credentials_json")
	if path := gcsCfg("credentials_file"); path != "" && len(credentials) == 0 {
		// #nosec G304 -- path is from trusted config file.
		raw, err := os.ReadFile(path)
		if err != nil {
			fatal("read gcs credentials file", err, "path", path)
		}
		credentials = raw
	}
	if len(credentials) > 0 {
		creds, err := google.CredentialsFromJSON(a.ctx, credentials, gcs.ScopeFullControl)
		if err != nil {
			fatal("parse gcs credentials", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	if endpoint := gcsCfg("endpoint"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if ua := gcsCfg("user_agent"); ua != "" {
		opts = append(opts, option.WithUserAgent(ua))
	}
	return opts
}

// setting returns a reader for trimmed string keys under prefix.
func (a *App) setting(prefix string) func(key string) string {
	return func(key string) string {
		return strings.TrimSpace(a.config.GetString(prefix + "." + key))
	}
}

func (a *App) initStorage() {
	driver := a.setting("storage")("driver")

	var gcsOptions []option.ClientOption
	if driver == storage.DriverGCS {
		gcsOptions = a.gcsOptions()
	}

	s3, minio := a.setting("storage.s3"), a.setting("storage.minio")
	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		File:     storage.FileOptions{Dir: a.setting("storage.file")("dir")},
		Redis:    storage.RedisOptions{Client: a.cacheConn, Prefix: a.config.GetString("storage.redis.prefix")},
		Postgres: storage.PostgresOptions{Pool: a.dbConn, Table: a.config.GetString("storage.postgres.table")},
		S3: storage.S3Options{
			Bucket:       s3("bucket"),
			Region:       s3("region"),
			Endpoint:     s3("endpoint"),
			AccessKey:    s3("access_key"),
			SecretKey:    s3("secret_key"),
			SessionToken: s3("session_token"),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{Bucket: a.setting("storage.gcs")("bucket"), ClientOptions: gcsOptions},
		MinIO: storage.MinIOOptions{
			Bucket:       minio("bucket"),
			Region:       minio("region"),
			Endpoint:     minio("endpoint"),
			AccessKey:    minio("access_key"),
			SecretKey:    minio("secret_key"),
			SessionToken: minio("session_token"),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		fatal("init storage", err, "driver", driver)
	}

	a.storage = stg
}

func (a *App) nsqConfigs() (producer, consumer *nsq.Config) {
	const prefix = "messaging.nsq."
	producer = nsq.NewConfig()
	producer.DialTimeout = a.config.GetSecond(prefix + "producer_config.dial_timeout_seconds")
	producer.ReadTimeout = a.config.GetSecond(prefix + "producer_config.read_timeout_seconds")
	producer.WriteTimeout = a.config.GetSecond(prefix + "producer_config.write_timeout_seconds")

	consumer = nsq.NewConfig()
	consumer.MaxInFlight = a.config.GetInt(prefix + "consumer_config.max_in_flight")
	consumer.MaxAttempts = a.config.GetUint16(prefix + "consumer_config.max_attempts")
	consumer.LookupdPollInterval = a.config.GetSecond(prefix + "consumer_config.lookupd_poll_interval_seconds")
	consumer.DefaultRequeueDelay = a.config.GetSecond(prefix + "consumer_config.default_requeue_delay_seconds")
	consumer.MaxRequeueDelay = a.config.GetSecond(prefix + "consumer_config.max_requeue_delay_seconds")
	return producer, consumer
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	var pubsubOptions []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v), option.WithoutAuthentication())
	}

	producerCfg, consumerCfg := a.nsqConfigs()
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		MemoryBuffer: a.config.GetInt("messaging.memory.buffer"),
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			ProducerConfig:       producerCfg,
			ConsumerConfig:       consumerCfg,
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				ClientID:  a.config.GetString("messaging.kafka.client_id"),
				Timeout:   a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		fatal("init messaging", err, "driver", driver)
	}

	a.messaging = client
}

func (a *App) initCasbin() {
	e, err := authz.NewEnforcer(a.config.GetArray("authz.policies"))
	if err != nil {
		fatal("init casbin", err)
	}

	a.casbin = e
}

func (a *App) initHealthID() {
	switch driver := a.config.GetString("healthid.driver"); driver {
	case "", healthid.DriverStatic:
		a.healthID = healthid.NewStatic(a.clock)
	case healthid.DriverHTTP:
		client, err := healthid.NewClient(healthid.Config{
			BaseURL:      a.config.GetString("healthid.http.base_url"),
			TokenURL:     a.config.GetString("healthid.http.token_url"),
			ClientID:     a.config.GetString("healthid.http.client_id"),
			ClientSecret: a.config.GetString("healthid.http.client_secret"),
			Scopes:       a.config.GetArray("healthid.http.scopes"),
			Timeout:      a.config.GetSecond("healthid.http.timeout_seconds"),
			MaxRetries:   uint64(a.config.GetUint("healthid.http.max_retries")),
		}, a.clock, a.ins)
		if err != nil {
			fatal("init health id client", err)
		}
		a.healthID = client
	default:
		fatal("init health id, unknown driver", nil, "driver", driver)
	}
}

func (a *App) initHTTPServer() {
	public := map[string][]string{}
	if a.config.GetBool("modules.auth.dev_otp_enabled") {
		public[http.MethodGet] = append(public[http.MethodGet], authinbound.DevOTPPath)
	}

	a.router = router.NewRouter(router.Config{
		Config:          a.config,
		UUID:            a.uuid,
		JWT:             a.jwt,
		Instrument:      a.ins,
		PublicEndpoints: public,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", router.HeaderCorrelationID, router.HeaderRequestID},
		ExposedHeaders:   []string{router.HeaderCorrelationID, "Retry-After"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

// initClosers releases resources in reverse dependency order. Instrumentation
// goes last so shutdown logs still reach the exporter.
func (a *App) initClosers() {
	a.closers = []closer{
		{"messaging", func(context.Context) error { return a.messaging.Close() }},
		{"mail", func(context.Context) error { return a.mail.Close() }},
		{"storage", func(context.Context) error { return a.storage.Close() }},
		{"redis", func(context.Context) error {
			if a.cacheConn == nil {
				return nil
			}
			return a.cacheConn.Close()
		}},
		{"database", func(context.Context) error {
			if a.dbConn != nil {
				a.dbConn.Close()
			}
			return nil
		}},
		{"config", func(context.Context) error { return a.config.Close() }},
		{"instrument", a.ins.Shutdown},
	}
}
