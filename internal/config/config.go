package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is built once in main and passed to whatever needs it.
type Config struct {
	AppName          string
	ServiceNamespace string
	ServiceVersion   string
	Environment      string
	Port             string

	Database Database

	OTelEnabled  bool
	OTLPEndpoint string

	KafkaBrokers      []string
	OrderCreatedTopic string
	WorkerGroupID     string

	SeedDemoData   bool
	AutoMigrate    bool
	MigrationsPath string

	APIURL          string
	EmailServiceURL string
}

type Database struct {
	URL          string
	Host         string
	Port         int
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the parts.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	env := reader{lookup: lookup}

	cfg := &Config{
		AppName:          env.str("APP_NAME", "ecommerce-back-go"),
		ServiceNamespace: env.str("SERVICE_NAMESPACE", "tenant-a"),
		ServiceVersion:   env.str("SERVICE_VERSION", "0.1.0"),
		Environment:      env.str("ENVIRONMENT", "production"),
		Port:             env.str("PORT", "8080"),
		Database: Database{
			URL:          env.str("DATABASE_URL", ""),
			Host:         env.str("DATABASE_HOST", "postgres"),
			Port:         env.int("DATABASE_PORT", 5432),
			Name:         env.str("DATABASE_NAME", "panopticon"),
			User:         env.str("DATABASE_USER", "panopticon"),
			Password:     env.str("DATABASE_PASSWORD", "panopticon"),
			SSLMode:      env.str("DATABASE_SSLMODE", "disable"),
			MaxOpenConns: env.int("DATABASE_MAX_OPEN_CONNS", 20),
		},
		OTelEnabled:       env.bool("OTEL_ENABLED", true),
		OTLPEndpoint:      env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		KafkaBrokers:      env.list("KAFKA_BROKERS"),
		OrderCreatedTopic: env.str("ORDER_CREATED_TOPIC", "order.created"),
		WorkerGroupID:     env.str("WORKER_GROUP_ID", "notification-worker"),
		SeedDemoData:      env.bool("SEED_DEMO_DATA", true),
		AutoMigrate:       env.bool("AUTO_MIGRATE", false),
		MigrationsPath:    env.str("MIGRATIONS_PATH", "file://migrations"),
		APIURL:            env.str("API_URL", "http://localhost:8080"),
		EmailServiceURL:   env.str("EMAIL_SERVICE_URL", ""),
	}

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	return cfg, nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) str(key, fallback string) string {
	if val, ok := r.lookup(key); ok && val != "" {
		return val
	}
	return fallback
}

func (r *reader) int(key string, fallback int) int {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, val))
		return fallback
	}
	return n
}

func (r *reader) bool(key string, fallback bool) bool {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, val))
		return fallback
	}
	return b
}

func (r *reader) list(key string) []string {
	val, ok := r.lookup(key)
	if !ok || val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
