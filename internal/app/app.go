// Package app arma el contenedor de dependencias del servicio: config,
// logger, store, object storage, email, caches y el orquestador de settings.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/ajustes/internal/config"
	"github.com/dropDatabas3/ajustes/internal/email"
	httpx "github.com/dropDatabas3/ajustes/internal/http"
	settingsctl "github.com/dropDatabas3/ajustes/internal/http/controllers/settings"
	"github.com/dropDatabas3/ajustes/internal/jwt"
	"github.com/dropDatabas3/ajustes/internal/metrics"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
	"github.com/dropDatabas3/ajustes/internal/rate"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	"github.com/dropDatabas3/ajustes/internal/security/secretbox"
	"github.com/dropDatabas3/ajustes/internal/settings"
	"github.com/dropDatabas3/ajustes/internal/storage"
	"github.com/dropDatabas3/ajustes/internal/store"

	// Drivers de store: se auto-registran en init().
	_ "github.com/dropDatabas3/ajustes/internal/store/noop"
	_ "github.com/dropDatabas3/ajustes/internal/store/pg"
)

// App es el contenedor del servicio armado y listo para servir.
type App struct {
	Config   *config.Config
	Store    store.Store
	Service  *settings.Service
	Sweeper  *rollback.Sweeper
	Router   http.Handler
	VerifyGC func(ctx context.Context) (int, error) // limpieza de tokens de verificación

	redis *rdb.Client
}

// New construye el contenedor completo a partir de la configuración.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log := logger.L().With(logger.Component("app"))

	a := &App{Config: cfg}

	// ─── Store (Postgres o demo) ───
	st, err := store.Open(ctx, store.Config{
		Driver:       cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("app: abrir store: %w", err)
	}
	a.Store = st
	log.Info("store abierto", logger.String("driver", st.Name()))

	if cfg.Flags.Migrate {
		if m, ok := st.(store.Migratable); ok {
			if err := m.Migrate(ctx); err != nil {
				a.Close()
				return nil, fmt.Errorf("app: migraciones: %w", err)
			}
			log.Info("migraciones aplicadas")
		}
	}

	// ─── Object storage ───
	var objects storage.ObjectStorage
	if cfg.Objects.Bucket != "" {
		secretKey, err := decryptIfNeeded(cfg.Objects.SecretKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: secret key de objects: %w", err)
		}
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:      cfg.Objects.Endpoint,
			Region:        cfg.Objects.Region,
			Bucket:        cfg.Objects.Bucket,
			AccessKey:     cfg.Objects.AccessKey,
			SecretKey:     secretKey,
			PublicBaseURL: cfg.Objects.PublicBaseURL,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: object storage: %w", err)
		}
		objects = s3
	} else {
		// Sin bucket configurado: bucket en memoria (dev/demo)
		objects = storage.NewMemory(cfg.Objects.PublicBaseURL)
		log.Warn("object storage en memoria: los avatares no sobreviven reinicios")
	}

	// ─── Email ───
	var sender email.Sender
	if cfg.SMTPConfigured() {
		pass, err := decryptIfNeeded(cfg.SMTP.Password)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: password SMTP: %w", err)
		}
		smtp := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, pass)
		smtp.TLSMode = cfg.SMTP.TLS
		smtp.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = smtp
	}
	emails, err := email.NewService(email.ServiceConfig{
		Sender:         sender,
		BaseURL:        cfg.Email.BaseURL,
		DemoMode:       st.Name() == "none",
		DebugEchoLinks: cfg.Email.DebugEchoLinks && cfg.IsDev(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: email: %w", err)
	}

	// ─── Cooldowns y rollback tokens ───
	var cooldowns rate.CooldownStore
	var rollbacks rollback.Store
	if strings.EqualFold(cfg.Cache.Kind, "redis") {
		a.redis = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("app: redis: %w", err)
		}
		cooldowns = rate.NewRedisCooldowns(a.redis, cfg.Cache.Redis.Prefix)
		rollbacks = rollback.NewRedisStore(a.redis, cfg.Cache.Redis.Prefix)
		log.Info("cache redis conectado", logger.String("addr", cfg.Cache.Redis.Addr))
	} else {
		cooldowns = rate.NewMemoryCooldowns()
		rollbacks = rollback.NewMemoryStore()
	}

	// ─── Orquestador ───
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	a.Service = settings.NewService(settings.Deps{
		Settings:     st.Settings(),
		Identity:     st.Identities(),
		VerifyTokens: st.VerificationTokens(),
		Objects:      objects,
		Emails:       emails,
		Cooldowns:    cooldowns,
		Rollbacks:    rollbacks,
		Tokens:       tokens,
		Config: settings.Config{
			UndoWindow:               cfg.UndoWindow(),
			ChangeEmailCooldown:      cfg.ChangeEmailCooldown(),
			SendVerificationCooldown: cfg.SendVerificationCooldown(),
			VerifyTTL:                cfg.VerifyTTL(),
			ReauthTTL:                cfg.ReauthTTL(),
		},
	})

	a.Sweeper = rollback.NewSweeper(rollbacks, a.Service.Compensator(), cfg.UndoSweepEvery())
	a.Sweeper.OnSwept = func(n int) {
		metrics.SweptTokensTotal.Add(float64(n))
	}

	a.VerifyGC = st.VerificationTokens().DeleteExpired

	// ─── HTTP ───
	if err := metrics.RegisterSettings(nil); err != nil {
		a.Close()
		return nil, fmt.Errorf("app: métricas: %w", err)
	}
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: a.poolFunc()})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: métricas http: %w", err)
	}

	a.Router = httpx.NewRouter(httpx.RouterDeps{
		Settings: settingsctl.NewController(a.Service),
		Tokens:   tokens,
		Metrics:  metricsHandler,
		Readyz:   a.readyz,
	})

	return a, nil
}

// Close libera recursos en orden inverso al armado.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

// poolFunc expone el pool de Postgres si el driver lo tiene (para métricas).
func (a *App) poolFunc() func() *pgxpool.Pool {
	p, ok := a.Store.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil
	}
	return func() *pgxpool.Pool { return p.Pool() }
}

// readyz responde 200 si el store contesta el ping.
func (a *App) readyz(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store: " + err.Error()))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// decryptIfNeeded resuelve secretos con prefijo "enc:" vía secretbox.
func decryptIfNeeded(v string) (string, error) {
	if !strings.HasPrefix(v, "enc:") {
		return v, nil
	}
	return secretbox.Decrypt(strings.TrimPrefix(v, "enc:"))
}
