package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer      string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL     string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience    string   `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey  string   `mapstructure:"AUTH_SIGNING_KEY"`
	PublicBaseURL   string   `mapstructure:"PUBLIC_BASE_URL"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	GrantTTLMinutes int      `mapstructure:"GRANT_TTL_MINUTES"`
	ShareTTLHours   int      `mapstructure:"SHARE_TTL_HOURS"`
	AuditMaxAgeDays int      `mapstructure:"AUDIT_MAX_AGE_DAYS"`
	AuditMaxPerProf int      `mapstructure:"AUDIT_MAX_PER_PROFILE"`
	AuditPurgeEvery string   `mapstructure:"AUDIT_PURGE_INTERVAL"`
	TLSEnabled      bool     `mapstructure:"TLS_ENABLED"`
	TLSCertFile     string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile      string   `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("GRANT_TTL_MINUTES", 30)
	v.SetDefault("SHARE_TTL_HOURS", 24)
	v.SetDefault("AUDIT_MAX_AGE_DAYS", 2190)
	v.SetDefault("AUDIT_MAX_PER_PROFILE", 1000)
	v.SetDefault("AUDIT_PURGE_INTERVAL", "24h")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("PUBLIC_BASE_URL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("GRANT_TTL_MINUTES")
	v.BindEnv("SHARE_TTL_HOURS")
	v.BindEnv("AUDIT_MAX_AGE_DAYS")
	v.BindEnv("AUDIT_MAX_PER_PROFILE")
	v.BindEnv("AUDIT_PURGE_INTERVAL")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active: all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GrantTTL returns the temporary password-access window as a duration.
func (c *Config) GrantTTL() time.Duration {
	return time.Duration(c.GrantTTLMinutes) * time.Minute
}

// ShareTTL returns the share-token lifetime as a duration.
func (c *Config) ShareTTL() time.Duration {
	return time.Duration(c.ShareTTLHours) * time.Hour
}

// AuditMaxAge returns the age-based audit retention cutoff as a duration.
func (c *Config) AuditMaxAge() time.Duration {
	return time.Duration(c.AuditMaxAgeDays) * 24 * time.Hour
}

// AuditPurgeInterval parses the janitor interval. Invalid values fall back
// to 24 hours so a bad env var cannot disable retention.
func (c *Config) AuditPurgeInterval() time.Duration {
	d, err := time.ParseDuration(c.AuditPurgeEvery)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Validate checks that the configuration is safe to run. Outside development
// mode either AUTH_ISSUER (external IdP) or AUTH_SIGNING_KEY (shared HMAC
// secret) must be set so that real JWT authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" && c.AuthSigningKey == "" {
		return fmt.Errorf(
			"AUTH_ISSUER or AUTH_SIGNING_KEY must be set when ENV=%q. "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if c.GrantTTLMinutes <= 0 {
		return fmt.Errorf("GRANT_TTL_MINUTES must be positive, got %d", c.GrantTTLMinutes)
	}
	if c.AuditMaxPerProf <= 0 {
		return fmt.Errorf("AUDIT_MAX_PER_PROFILE must be positive, got %d", c.AuditMaxPerProf)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
