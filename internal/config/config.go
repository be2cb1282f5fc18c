package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// Config is the top-level application configuration. It is built once by
// Load and passed explicitly to every component that needs it.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Log          LogConfig          `koanf:"log"`
	Auth         AuthConfig         `koanf:"auth"`
	Pagination   PaginationConfig   `koanf:"pagination"`
	Jobs         JobsConfig         `koanf:"jobs"`
	Metrics      MetricsConfig      `koanf:"metrics"`
	Notification NotificationConfig `koanf:"notification"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string     `koanf:"host"`
	Port    int        `koanf:"port"`
	Mode    string     `koanf:"mode"`
	Timeout string     `koanf:"timeout"`
	CORS    CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	MySQL    MySQLConfig    `koanf:"mysql"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	TLS      string `koanf:"tls"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds bearer token settings and the operators allowed to
// obtain a token.
type AuthConfig struct {
	Enabled     bool             `koanf:"enabled"`
	JWTSecret   string           `koanf:"jwt_secret"`
	TokenExpiry string           `koanf:"token_expiry"`
	Issuer      string           `koanf:"issuer"`
	PublicPaths []string         `koanf:"public_paths"`
	Operators   []OperatorConfig `koanf:"operators"`
}

// OperatorConfig is a back-office user. PasswordHash is a bcrypt hash.
type OperatorConfig struct {
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"password_hash"`
}

// PaginationConfig bounds list endpoints.
type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	Enabled              bool                       `koanf:"enabled"`
	Timezone             string                     `koanf:"timezone"`
	ContributionReminder ContributionReminderConfig `koanf:"contribution_reminder"`
}

// ContributionReminderConfig configures the member reminder job.
type ContributionReminderConfig struct {
	Schedule    string `koanf:"schedule"`
	BatchSize   int    `koanf:"batch_size"`
	Concurrency int    `koanf:"concurrency"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// NotificationConfig holds member notification settings.
type NotificationConfig struct {
	Sender  string `koanf:"sender"`
	Channel string `koanf:"channel"`
}

// RequiredPublicPath must stay reachable without a token when auth is enabled.
const RequiredPublicPath = "/api/v1/auth/token"

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__PAGINATION__MAX_PAGE_SIZE=200 overrides pagination.max_page_size.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, normalizing
// fields in place.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validatePagination,
		c.validateJobs,
		c.validateMetrics,
		c.validateNotification,
		c.validateLog,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Whitespace-only means unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)

	if err := optionalDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}
	for idx, origin := range c.Server.CORS.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid server.cors.allow_origins[%d] %q: must be \"*\" or start with http:// or https://", idx, origin)
		}
	}
	return optionalDuration("server.cors.max_age", c.Server.CORS.MaxAge)
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	case "mysql":
		if err := c.validateMySQL(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q, %q", c.Database.Driver, "sqlite", "postgres", "mysql")
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	return optionalDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres
	host := strings.TrimSpace(pg.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	user := strings.TrimSpace(pg.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(pg.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	pg.Host = host
	pg.User = user
	pg.DBName = dbName
	pg.SSLMode = sslMode
	return nil
}

func (c *Config) validateMySQL() error {
	my := &c.Database.MySQL
	host := strings.TrimSpace(my.Host)
	if host == "" {
		return fmt.Errorf("database.mysql.host is required when driver is mysql")
	}
	if my.Port < 1 || my.Port > 65535 {
		return fmt.Errorf("invalid database.mysql.port %d: must be between 1 and 65535", my.Port)
	}
	user := strings.TrimSpace(my.User)
	if user == "" {
		return fmt.Errorf("database.mysql.user is required when driver is mysql")
	}
	dbName := strings.TrimSpace(my.DBName)
	if dbName == "" {
		return fmt.Errorf("database.mysql.dbname is required when driver is mysql")
	}

	tls := strings.TrimSpace(my.TLS)
	switch tls {
	case "", "false", "true", "skip-verify", "preferred":
	default:
		return fmt.Errorf("invalid database.mysql.tls %q: must be one of %q, %q, %q, %q", my.TLS, "false", "true", "skip-verify", "preferred")
	}
	if c.Server.Mode == gin.ReleaseMode && tls != "true" {
		return fmt.Errorf("invalid database.mysql.tls %q for server.mode %q: must be %q", my.TLS, gin.ReleaseMode, "true")
	}

	my.Host = host
	my.User = user
	my.DBName = dbName
	my.TLS = tls
	return nil
}

func (c *Config) validateAuth() error {
	if !c.Auth.Enabled {
		return nil
	}

	jwtSecret := strings.TrimSpace(c.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(jwtSecret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = jwtSecret

	tokenExpiry := strings.TrimSpace(c.Auth.TokenExpiry)
	if tokenExpiry == "" {
		return fmt.Errorf("auth.token_expiry is required when auth is enabled")
	}
	if err := optionalDuration("auth.token_expiry", tokenExpiry); err != nil {
		return err
	}
	c.Auth.TokenExpiry = tokenExpiry
	c.Auth.Issuer = strings.TrimSpace(c.Auth.Issuer)

	publicPaths := make([]string, 0, len(c.Auth.PublicPaths)+1)
	seen := make(map[string]struct{}, len(c.Auth.PublicPaths)+1)
	for idx, p := range c.Auth.PublicPaths {
		normalized := strings.TrimSpace(p)
		if normalized == "" {
			return fmt.Errorf("auth.public_paths[%d] cannot be empty when auth is enabled", idx)
		}
		if !strings.HasPrefix(normalized, "/") {
			return fmt.Errorf("invalid auth.public_paths[%d] %q: must start with '/'", idx, p)
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		publicPaths = append(publicPaths, normalized)
	}
	if _, exists := seen[RequiredPublicPath]; !exists {
		publicPaths = append(publicPaths, RequiredPublicPath)
	}
	c.Auth.PublicPaths = publicPaths

	if len(c.Auth.Operators) == 0 {
		return fmt.Errorf("auth.operators must list at least one operator when auth is enabled")
	}
	usernames := make(map[string]struct{}, len(c.Auth.Operators))
	for idx := range c.Auth.Operators {
		op := &c.Auth.Operators[idx]
		op.Username = strings.TrimSpace(op.Username)
		op.PasswordHash = strings.TrimSpace(op.PasswordHash)
		if op.Username == "" {
			return fmt.Errorf("auth.operators[%d].username is required", idx)
		}
		if _, dup := usernames[op.Username]; dup {
			return fmt.Errorf("auth.operators[%d].username %q is duplicated", idx, op.Username)
		}
		usernames[op.Username] = struct{}{}
		if !strings.HasPrefix(op.PasswordHash, "$2") {
			return fmt.Errorf("auth.operators[%d].password_hash must be a bcrypt hash", idx)
		}
	}
	return nil
}

func (c *Config) validatePagination() error {
	p := &c.Pagination
	if p.DefaultPageSize == 0 {
		p.DefaultPageSize = 20
	}
	if p.MaxPageSize == 0 {
		p.MaxPageSize = 100
	}
	if p.DefaultPageSize < 0 {
		return fmt.Errorf("invalid pagination.default_page_size %d: must be positive", p.DefaultPageSize)
	}
	if p.MaxPageSize < 0 {
		return fmt.Errorf("invalid pagination.max_page_size %d: must be positive", p.MaxPageSize)
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return fmt.Errorf("invalid pagination.default_page_size %d: must not exceed pagination.max_page_size %d", p.DefaultPageSize, p.MaxPageSize)
	}
	return nil
}

func (c *Config) validateJobs() error {
	if !c.Jobs.Enabled {
		return nil
	}

	c.Jobs.Timezone = strings.TrimSpace(c.Jobs.Timezone)
	if c.Jobs.Timezone != "" {
		if _, err := time.LoadLocation(c.Jobs.Timezone); err != nil {
			return fmt.Errorf("invalid jobs.timezone %q: %w", c.Jobs.Timezone, err)
		}
	}

	r := &c.Jobs.ContributionReminder
	r.Schedule = strings.TrimSpace(r.Schedule)
	if r.Schedule == "" {
		return fmt.Errorf("jobs.contribution_reminder.schedule is required when jobs are enabled")
	}
	if _, err := cron.ParseStandard(r.Schedule); err != nil {
		return fmt.Errorf("invalid jobs.contribution_reminder.schedule %q: %w", r.Schedule, err)
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 100
	}
	if r.Concurrency <= 0 {
		r.Concurrency = 4
	}
	return nil
}

func (c *Config) validateMetrics() error {
	c.Metrics.Path = strings.TrimSpace(c.Metrics.Path)
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("invalid metrics.path %q: must start with '/'", c.Metrics.Path)
	}
	return nil
}

func (c *Config) validateNotification() error {
	channel := strings.ToLower(strings.TrimSpace(c.Notification.Channel))
	switch channel {
	case "":
		channel = "email"
	case "email", "sms":
	default:
		return fmt.Errorf("invalid notification.channel %q: must be one of %q, %q", c.Notification.Channel, "email", "sms")
	}
	c.Notification.Channel = channel
	c.Notification.Sender = strings.TrimSpace(c.Notification.Sender)
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

// optionalDuration validates a Go duration string when it is set.
func optionalDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return nil
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, has := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if has {
			classes++
		}
	}
	return classes
}

// Duration parses a validated duration field, returning fallback when unset.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
