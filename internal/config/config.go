// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno. Orden de precedencia: env > yaml > defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | none ("none" = modo demo/read-only, sin backend)
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Objects struct {
		Endpoint      string `yaml:"endpoint"` // S3/MinIO
		Region        string `yaml:"region"`
		Bucket        string `yaml:"bucket"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"` // soporta prefijo "enc:" (secretbox)
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"objects"`

	Cache struct {
		// memory | redis. Respaldo de rollback tokens y cooldowns.
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"` // soporta prefijo "enc:" (secretbox)
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		BaseURL        string `yaml:"base_url"` // base para links de verificación
		VerifyTTL      string `yaml:"verify_ttl"`
		DebugEchoLinks bool   `yaml:"debug_echo_links"`
	} `yaml:"email"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		ReauthTTL string `yaml:"reauth_ttl"`
	} `yaml:"auth"`

	Undo struct {
		Window     string `yaml:"window"`      // validez del rollback token
		SweepEvery string `yaml:"sweep_every"` // intervalo del sweep
	} `yaml:"undo"`

	Cooldown struct {
		ChangeEmail      string `yaml:"change_email"`
		SendVerification string `yaml:"send_verification"`
	} `yaml:"cooldown"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides de env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		if c.Storage.DSN != "" {
			c.Storage.Driver = "postgres"
		} else {
			c.Storage.Driver = "none"
		}
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 2
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "ajustes"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.VerifyTTL == "" {
		c.Email.VerifyTTL = "48h"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "ajustes"
	}
	if c.Auth.ReauthTTL == "" {
		c.Auth.ReauthTTL = "5m"
	}
	if c.Undo.Window == "" {
		c.Undo.Window = "5m"
	}
	if c.Undo.SweepEvery == "" {
		c.Undo.SweepEvery = "1m"
	}
	if c.Cooldown.ChangeEmail == "" {
		c.Cooldown.ChangeEmail = "60s"
	}
	if c.Cooldown.SendVerification == "" {
		c.Cooldown.SendVerification = "60s"
	}
}

func (c *Config) applyEnv() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
		if c.Storage.Driver == "none" {
			c.Storage.Driver = "postgres"
		}
	}
	if v, ok := getEnvInt("STORAGE_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// OBJECTS (S3/MinIO)
	if v, ok := getEnvStr("OBJECTS_ENDPOINT"); ok {
		c.Objects.Endpoint = v
	}
	if v, ok := getEnvStr("OBJECTS_REGION"); ok {
		c.Objects.Region = v
	}
	if v, ok := getEnvStr("OBJECTS_BUCKET"); ok {
		c.Objects.Bucket = v
	}
	if v, ok := getEnvStr("OBJECTS_ACCESS_KEY"); ok {
		c.Objects.AccessKey = v
	}
	if v, ok := getEnvStr("OBJECTS_SECRET_KEY"); ok {
		c.Objects.SecretKey = v
	}
	if v, ok := getEnvStr("OBJECTS_PUBLIC_BASE_URL"); ok {
		c.Objects.PublicBaseURL = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// EMAIL
	if v, ok := getEnvStr("EMAIL_BASE_URL"); ok {
		c.Email.BaseURL = v
	}
	if v, ok := getEnvStr("EMAIL_VERIFY_TTL"); ok {
		c.Email.VerifyTTL = v
	}
	if v, ok := getEnvBool("EMAIL_DEBUG_LINKS"); ok {
		c.Email.DebugEchoLinks = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvStr("AUTH_ISSUER"); ok {
		c.Auth.Issuer = v
	}
	if v, ok := getEnvStr("AUTH_REAUTH_TTL"); ok {
		c.Auth.ReauthTTL = v
	}

	// UNDO
	if v, ok := getEnvStr("UNDO_WINDOW"); ok {
		c.Undo.Window = v
	}
	if v, ok := getEnvStr("UNDO_SWEEP_EVERY"); ok {
		c.Undo.SweepEvery = v
	}

	// COOLDOWN
	if v, ok := getEnvStr("COOLDOWN_CHANGE_EMAIL"); ok {
		c.Cooldown.ChangeEmail = v
	}
	if v, ok := getEnvStr("COOLDOWN_SEND_VERIFICATION"); ok {
		c.Cooldown.SendVerification = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// Accessors con parseo de duraciones (los campos viven como string en YAML).

func (c *Config) UndoWindow() time.Duration {
	return parseDur(c.Undo.Window, 5*time.Minute)
}

func (c *Config) UndoSweepEvery() time.Duration {
	return parseDur(c.Undo.SweepEvery, time.Minute)
}

func (c *Config) ChangeEmailCooldown() time.Duration {
	return parseDur(c.Cooldown.ChangeEmail, 60*time.Second)
}

func (c *Config) SendVerificationCooldown() time.Duration {
	return parseDur(c.Cooldown.SendVerification, 60*time.Second)
}

func (c *Config) VerifyTTL() time.Duration {
	return parseDur(c.Email.VerifyTTL, 48*time.Hour)
}

func (c *Config) ReauthTTL() time.Duration {
	return parseDur(c.Auth.ReauthTTL, 5*time.Minute)
}

// SMTPConfigured indica si hay transporte de email utilizable.
func (c *Config) SMTPConfigured() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// IsDev indica si corremos en entorno de desarrollo/test.
func (c *Config) IsDev() bool {
	env := strings.ToLower(c.App.Env)
	return env == "dev" || env == "test"
}

func parseDur(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvStr(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
	}
	return false, false
}
