package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/cbam-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Reference   ReferenceConfig
	Calculation CalculationConfig
	Storage     StorageConfig
	Secrets     SecretsConfig
	Logging     LoggingConfig
	Server      ServerConfig
	CORS        CORSConfig
	Security    SecurityConfig
	RateLimit   RateLimitConfig
	Jobs        JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects and configures the entry store.
// Driver is "postgres" for deployed environments or "sqlite" for local runs.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// AuthConfig holds API key and bearer token settings
type AuthConfig struct {
	// APIKey authenticates system integrations via the x-api-key header
	APIKey string
	// JWTSecret is the HMAC key for HS256 bearer tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	// Disabled bypasses authentication entirely (local development only)
	Disabled bool
}

// ReferenceConfig points at the regulatory reference dataset
type ReferenceConfig struct {
	// Path to a YAML dataset; empty uses the dataset compiled into the binary
	Path string
}

// CalculationConfig holds calculation inputs that come from outside an entry
type CalculationConfig struct {
	// CertificatePrice is the default EUR price per certificate; 0 disables cost estimates
	CertificatePrice float64
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	// ArchivePrefix is prepended to every submission archive key
	ArchivePrefix string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout     int
	WriteTimeout    int
	RequestTimeout  int
	ShutdownTimeout int
	MaxBodyBytes    int64
	EnableSwagger   bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// JobsConfig controls background jobs
type JobsConfig struct {
	// RecalculationEnabled turns on the periodic recalculation of open entries
	RecalculationEnabled bool
	// RecalculationCron uses the six-field (seconds first) cron format
	RecalculationCron string
	// RecalculationTimeout bounds a single run (seconds)
	RecalculationTimeout int
	// RecalculationOnStartup runs the job once when the scheduler starts
	RecalculationOnStartup bool
	// RecalculationBatchSize is the number of entries loaded per page
	RecalculationBatchSize int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// IsSQLite reports whether the sqlite driver is selected
func (d *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ShutdownTimeoutDuration returns graceful shutdown timeout as duration
func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// RecalculationTimeoutDuration returns the job timeout as duration
func (j *JobsConfig) RecalculationTimeoutDuration() time.Duration {
	return time.Duration(j.RecalculationTimeout) * time.Second
}

// CertificatePricePtr returns the configured certificate price, or nil when unset
func (c *CalculationConfig) CertificatePricePtr() *float64 {
	if c.CertificatePrice <= 0 {
		return nil
	}
	price := c.CertificatePrice
	return &price
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if path := v.GetString("CBAM_REFERENCE_PATH"); path != "" {
		cfg.Reference.Path = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (use postgres or sqlite)", c.Database.Driver)
	}
	switch c.Storage.Mode {
	case "local", "cloud":
	default:
		return fmt.Errorf("unsupported storage mode %q (use local or cloud)", c.Storage.Mode)
	}
	if c.Calculation.CertificatePrice < 0 {
		return fmt.Errorf("calculation.certificatePrice must not be negative")
	}
	if c.Auth.Disabled && c.App.Environment == "production" {
		return fmt.Errorf("auth.disabled is not allowed in production")
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if err := ApplySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// ApplySecrets resolves every secret-backed setting through the provider.
// Environment variables win over vault values; settings with no value in
// either source keep what Load produced.
func ApplySecrets(ctx context.Context, cfg *Config, provider *secrets.Provider) error {
	bindings := []secrets.Binding{
		{SecretName: "cbam-db-host", EnvName: "DATABASE_HOST", Target: &cfg.Database.Host},
		{SecretName: "cbam-db-user", EnvName: "DATABASE_USER", Target: &cfg.Database.User},
		{SecretName: "cbam-db-password", EnvName: "DATABASE_PASSWORD", Target: &cfg.Database.Password, Required: !cfg.Database.IsSQLite()},
		{SecretName: "cbam-admin-api-key", EnvName: "ADMIN_API_KEY", Target: &cfg.Auth.APIKey},
		{SecretName: "cbam-jwt-secret", EnvName: "JWT_SECRET", Target: &cfg.Auth.JWTSecret, Required: !cfg.Auth.Disabled},
		{SecretName: "cbam-storage-connection-string", EnvName: "STORAGE_CLOUDCONNECTIONSTRING", Target: &cfg.Storage.CloudConnectionString, Required: cfg.Storage.Mode == "cloud"},
	}
	if err := provider.Resolve(ctx, bindings); err != nil {
		return fmt.Errorf("failed to resolve secrets: %w", err)
	}

	// SSL mode and database name vary per environment and are never stored in the vault
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	if name := os.Getenv("DEFAULT_DATABASE"); name != "" {
		cfg.Database.Name = name
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Straye CBAM API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "cbam")
	v.SetDefault("database.user", "cbam_user")
	v.SetDefault("database.password", "cbam_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "cbam.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	v.SetDefault("auth.jwtIssuer", "straye-cbam")
	v.SetDefault("auth.jwtAudience", "cbam-api")
	v.SetDefault("auth.disabled", false)

	v.SetDefault("reference.path", "")

	v.SetDefault("calculation.certificatePrice", 0)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "cbam-submissions")
	v.SetDefault("storage.archivePrefix", "submissions")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.shutdownTimeout", 30)
	v.SetDefault("server.maxBodyBytes", 1<<20)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'none'; frame-ancestors 'none'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 300)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/swagger/*"})

	// Nightly at 02:30 so stored totals follow reference data updates
	v.SetDefault("jobs.recalculationEnabled", true)
	v.SetDefault("jobs.recalculationCron", "0 30 2 * * *")
	v.SetDefault("jobs.recalculationTimeout", 600)
	v.SetDefault("jobs.recalculationOnStartup", false)
	v.SetDefault("jobs.recalculationBatchSize", 200)
}
