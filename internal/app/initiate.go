package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/otpauth/internal/auth/usecase"
	"github.com/shandysiswandi/otpauth/internal/migrations"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
)

// fatal aborts startup. Nothing has been served yet, so there is nothing to
// drain.
func fatal(component string, err error, args ...any) {
	slog.Error("startup failed", append([]any{"component", component, "error", err}, args...)...)
	os.Exit(1)
}

// configPath resolves CONFIG_PATH, then the container mount, then the
// repository copy when LOCAL=true.
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

// pingWithin bounds a startup connectivity check.
func (a *App) pingWithin(d time.Duration, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(a.ctx, d)
	defer cancel()
	return ping(ctx)
}

func (a *App) initConfig() {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		fatal("config", err)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		if err := os.Setenv("TZ", tz); err != nil {
			slog.Warn("unable to apply app.tz", "tz", tz, "error", err)
		}
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetDuration("instrument.metric_interval"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		fatal("instrument", err)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.argon2id = hash.NewArgon2id(a.config.GetString("hash.argon2id.pepper"))
	a.otp = otp.NewHOTP(libOTP.Digits(a.config.GetInt("otp.digits")))

	hmac, err := hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	if err != nil {
		fatal("hmac", err)
	}
	a.hmac = hmac

	v, err := validator.NewV10Validator()
	if err != nil {
		fatal("validator", err)
	}
	a.validator = v

	snow, err := uid.NewSnowflake()
	if err != nil {
		fatal("snowflake", err)
	}
	a.uid = snow
}

// errInvalidSessionTTL rejects a session lifetime that is set but unreadable,
// which would otherwise fall back to the codec default.
var errInvalidSessionTTL = errors.New("jwt.session_ttl is not a valid duration")

func sessionTTL(cfg config.Config) (time.Duration, error) {
	ttl := cfg.GetDuration("jwt.session_ttl")
	if ttl <= 0 && strings.TrimSpace(cfg.GetString("jwt.session_ttl")) != "" {
		return 0, errInvalidSessionTTL
	}
	return ttl, nil
}

func (a *App) initCodec() {
	ttl, err := sessionTTL(a.config)
	if err != nil {
		fatal("jwt", err, "value", a.config.GetString("jwt.session_ttl"))
	}

	codec, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(a.config.GetString("jwt.secret")),
		Issuer:     a.config.GetString("jwt.issuer"),
		SessionTTL: ttl,
		Clock:      a.clock,
		UUID:       a.uuid,
	})
	if err != nil {
		fatal("jwt", err)
	}
	a.codec = codec
}

func (a *App) initDatabase() {
	pc, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		fatal("database", err)
	}

	pc.MaxConns = int32(a.config.GetInt("database.pool.max_conns")) //nolint:gosec // small config value
	pc.MinConns = int32(a.config.GetInt("database.pool.min_conns")) //nolint:gosec // small config value
	pc.MaxConnLifetime = a.config.GetDuration("database.pool.max_conn_lifetime")
	pc.MaxConnIdleTime = a.config.GetDuration("database.pool.max_conn_idle")
	pc.HealthCheckPeriod = a.config.GetDuration("database.pool.health_check_period")

	pool, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		fatal("database", err)
	}

	if err := a.pingWithin(5*time.Second, pool.Ping); err != nil {
		fatal("database", err, "step", "ping")
	}

	a.dbConn = pool
}

func (a *App) initMigrations() {
	if !a.config.GetBool("database.migrate") {
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, a.dbConn); err != nil {
		fatal("migrations", err)
	}
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		fatal("redis", err)
	}

	rdb := redis.NewClient(opt)

	if err := a.pingWithin(5*time.Second, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		fatal("redis", err, "step", "ping")
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn, a.config.GetString("redis.idempotency_prefix"))
}

func (a *App) initMail() {
	var (
		client mail.Mail
		err    error
	)

	driver := strings.TrimSpace(a.config.GetString("mail.driver"))
	switch driver {
	case "gmail":
		client, err = mail.NewGmail(a.ctx, mail.GmailConfig{
			CredentialsFile: a.config.GetString("mail.gmail.credentials_file"),
			TokenFile:       a.config.GetString("mail.gmail.token_file"),
			From:            a.config.GetString("mail.from"),
		})
	default:
		client, err = mail.NewSMTP(mail.SMTPConfig{
			Host:     a.config.GetString("mail.smtp.host"),
			Port:     a.config.GetInt("mail.smtp.port"),
			Username: a.config.GetString("mail.smtp.username"),
			Password: a.config.GetString("mail.smtp.password"),
			From:     a.config.GetString("mail.from"),
		})
	}
	if err != nil {
		fatal("mail", err, "driver", driver)
	}

	a.mail = client
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			LookupdAddrs: a.config.GetArray("messaging.nsq.lookupd_addrs"),
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetDuration("messaging.nats.timeout")),
				nats.ReconnectWait(a.config.GetDuration("messaging.nats.reconnect_wait")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		fatal("messaging", err, "driver", driver)
	}

	a.messaging = client
}

func (a *App) initCasbin() {
	e, err := usecase.NewEnforcer(usecase.DefaultPolicies)
	if err != nil {
		fatal("casbin", err)
	}

	a.casbin = e
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Codec:      a.codec,
		Instrument: a.ins,
	})
	a.router.GET("/health", a.health)

	// Session and device cookies cross origins only with credentials allowed.
	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetDuration("app.server.http.read_timeout"),
		ReadHeaderTimeout: a.config.GetDuration("app.server.http.read_header_timeout"),
		WriteTimeout:      a.config.GetDuration("app.server.http.write_timeout"),
		IdleTimeout:       a.config.GetDuration("app.server.http.idle_timeout"),
	}
}

// closer releases one resource on shutdown.
type closer struct {
	name string
	fn   func(context.Context) error
}

func closeWith(name string, fn func() error) closer {
	return closer{name: name, fn: func(context.Context) error { return fn() }}
}

// initClosers lists resources in release order: telemetry is flushed first
// and config is closed last.
func (a *App) initClosers() {
	a.closers = []closer{
		{name: "instrument", fn: a.ins.Shutdown},
		closeWith("messaging", a.messaging.Close),
		closeWith("mail", a.mail.Close),
		closeWith("redis", a.cacheConn.Close),
		closeWith("database", func() error { a.dbConn.Close(); return nil }),
		closeWith("config", a.config.Close),
	}
}
