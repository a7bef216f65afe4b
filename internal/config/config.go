package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port           string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimit      int

	// Logging
	LogLevel string

	// Backend selection
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleExportTimeout      time.Duration

	// Bill reminders
	ReminderSchedule   string
	ReminderWindowDays int

	// Analytics cache
	CacheSize int
	CacheTTL  time.Duration
}

// Backends lists the supported DATA_BACKEND values.
var Backends = []string{"memory", "sqlite"}

// cronParser accepts schedules with a leading seconds field.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimit:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		DataDir:      getEnv("DATA_DIR", "data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/balancebooks.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "balancebooks"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleExportTimeout:      getEnvDuration("GOOGLE_EXPORT_TIMEOUT", 60*time.Second),

		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 0 8 * * *"),
		ReminderWindowDays: getEnvInt("REMINDER_WINDOW_DAYS", 7),

		CacheSize: getEnvInt("CACHE_SIZE", 256),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
	}

	return cfg
}

// problems collects every validation failure so one run reports them all.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	var p problems
	c.validateServer(&p)
	c.validateStorage(&p)
	c.validateEvents(&p)
	c.validateReminders(&p)
	c.validateCache(&p)
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(p, "\n- "))
}

// ValidateWorker is Validate plus the checks for the background workers,
// which share the API's ledger and so cannot run on a per-process store.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DataBackend != "sqlite" {
		return fmt.Errorf("configuration validation failed:\n- workers need DATA_BACKEND=sqlite to share the API's ledger, got '%s'", c.DataBackend)
	}
	return nil
}

func (c *Config) validateServer(p *problems) {
	switch port, err := strconv.Atoi(c.Port); {
	case err != nil:
		p.addf("invalid port '%s': must be a number", c.Port)
	case port < 1 || port > 65535:
		p.addf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.RateLimit < 1 {
		p.addf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimit)
	}
}

// validateStorage also creates the SQLite directory when it is missing.
func (c *Config) validateStorage(p *problems) {
	if !slices.Contains(Backends, c.DataBackend) {
		p.addf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends)
		return
	}
	if c.DataBackend != "sqlite" {
		return
	}
	if c.SQLiteDBPath == "" {
		p.addf("SQLite database path cannot be empty when using sqlite backend")
		return
	}
	if dir := filepath.Dir(c.SQLiteDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			p.addf("cannot create SQLite database directory '%s': %v", dir, err)
		}
	}
}

func (c *Config) validateEvents(p *problems) {
	if c.AMQPURL != "" {
		u, err := url.Parse(c.AMQPURL)
		switch {
		case err != nil:
			p.addf("invalid AMQP URL '%s': %v", c.AMQPURL, err)
		case u.Scheme != "amqp" && u.Scheme != "amqps":
			p.addf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme)
		}
		if c.AMQPExchange == "" {
			p.addf("AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			p.addf("AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}
	if f := c.GoogleServiceAccountFile; f != "" {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			p.addf("Google service account file does not exist: %s", f)
		}
	}
}

func (c *Config) validateReminders(p *problems) {
	if _, err := cronParser.Parse(c.ReminderSchedule); err != nil {
		p.addf("invalid reminder schedule '%s': %v", c.ReminderSchedule, err)
	}
	if c.ReminderWindowDays < 0 || c.ReminderWindowDays > 31 {
		p.addf("invalid reminder window %d: must be between 0 and 31 days", c.ReminderWindowDays)
	}
}

func (c *Config) validateCache(p *problems) {
	if c.CacheSize < 1 {
		p.addf("invalid cache size %d: must be at least 1", c.CacheSize)
	}
	switch {
	case c.CacheTTL < time.Second:
		p.addf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL)
	case c.CacheTTL > 24*time.Hour:
		p.addf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL)
	}
}

// HasGoogleCredentials reports whether the Sheets export can authenticate.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != ""
}

// envOr returns parse(os.Getenv(key)), or def when the variable is unset or
// does not parse.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnv(key, def string) string {
	return envOr(key, def, func(s string) (string, error) { return s, nil })
}

func getEnvInt(key string, def int) int {
	return envOr(key, def, strconv.Atoi)
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	return envOr(key, def, time.ParseDuration)
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string, def []string) []string {
	return envOr(key, def, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return nil, errors.New("empty list")
		}
		return out, nil
	})
}
