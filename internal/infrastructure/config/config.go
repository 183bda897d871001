package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

const envPrefix = "DENTAL"

// developmentJWTSecret signs tokens when no secret is configured outside production
const developmentJWTSecret = "dentalshop-development-secret-do-not-use"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	StockAlert StockAlertConfig `mapstructure:"stock_alert"`
	Cart       CartConfig       `mapstructure:"cart"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Printing   PrintingConfig   `mapstructure:"printing"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction reports whether the app runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type LogConfig struct {
	// debug, info, warn or error
	Level  string `mapstructure:"level"`
	// json or console
	Format string `mapstructure:"format"`
	// stdout, stderr or a file path
	Output string `mapstructure:"output"`
}

type DatabaseConfig struct {
	// postgres or sqlite; empty picks one from the environment
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`

	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	// minutes
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// minutes
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"`
}

// DSN is the postgres URL for d with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig points at the cart session store. Disabled keeps carts in memory.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	Issuer                 string        `mapstructure:"issuer"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	// zero keeps stock alert streams open
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`

	RateLimitEnabled      bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests     int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`

	// SwaggerEnabled serves the API reference at /swagger/index.html
	SwaggerEnabled bool `mapstructure:"swagger_enabled"`
}

// StorageConfig selects where uploaded article images go
type StorageConfig struct {
	// local or s3
	Driver       string `mapstructure:"driver"`
	LocalDir     string `mapstructure:"local_dir"`
	// URL prefix stored on records
	PublicPrefix string `mapstructure:"public_prefix"`
	MaxImageSize int64  `mapstructure:"max_image_size"`

	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	// MinIO and other S3 compatibles
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3PublicURL string `mapstructure:"s3_public_url"`
}

type StockAlertConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

type CartConfig struct {
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	CookiePath   string        `mapstructure:"cookie_path"`
}

// TelemetryConfig covers tracing, metrics, log export and profiling
type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"`

	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	// MetricsEnabled exposes Prometheus metrics at /metrics
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportEnabled  bool          `mapstructure:"metrics_export_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	LogsExportEnabled     bool          `mapstructure:"logs_export_enabled"`

	ProfilingEnabled  bool   `mapstructure:"profiling_enabled"`
	ProfilingServer   string `mapstructure:"profiling_server"`
	ProfilingUser     string `mapstructure:"profiling_user"`
	ProfilingPassword string `mapstructure:"profiling_password"`
}

// PrintingConfig drives the order slip renderer. Slips are printed by a
// headless Chrome, so the feature stays off unless one is installed.
type PrintingConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	// empty lets chromedp search the usual locations
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ShopName   string        `mapstructure:"shop_name"`
	ShopPhone  string        `mapstructure:"shop_phone"`
}

// defaults lists every key Load knows about. A key must be here for its
// DENTAL_* variable to be picked up, so settings without a useful default
// are listed with their zero value.
var defaults = map[string]any{
	"app.name": "dentalshop-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "",
	"database.host":               "",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "dentalshop",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "dentalshop.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.issuer":                   "dentalshop-backend",
	"jwt.access_token_expiration":  time.Hour,
	"jwt.refresh_token_expiration": 30 * 24 * time.Hour,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":             15 * time.Second,
	"http.write_timeout":            time.Duration(0),
	"http.idle_timeout":             time.Minute,
	"http.shutdown_timeout":         30 * time.Second,
	"http.max_header_bytes":         1 << 20,
	"http.max_body_size":            1 << 20, // multipart uploads are bounded by storage.max_image_size
	"http.rate_limit_enabled":       false,
	"http.rate_limit_requests":      100,
	"http.rate_limit_window":        time.Minute,
	"http.auth_rate_limit_enabled":  false,
	"http.auth_rate_limit_requests": 5,
	"http.auth_rate_limit_window":   time.Minute,
	"http.cors_allow_origins":       []string{},
	"http.cors_allow_methods":       []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":       []string{"Content-Type", "Authorization", "X-Request-ID", "X-Session-ID"},
	"http.trusted_proxies":          []string{},
	"http.swagger_enabled":          false,

	"storage.driver":         StorageLocal,
	"storage.local_dir":      "static/uploads/articles",
	"storage.public_prefix":  "/static/uploads/articles",
	"storage.max_image_size": 5 << 20,
	"storage.s3_bucket":      "",
	"storage.s3_region":      "",
	"storage.s3_endpoint":    "",
	"storage.s3_access_key":  "",
	"storage.s3_secret_key":  "",
	"storage.s3_public_url":  "",

	"stock_alert.poll_interval": 10 * time.Second,
	"stock_alert.error_backoff": 30 * time.Second,

	"cart.session_ttl":   7 * 24 * time.Hour,
	"cart.cookie_name":   "cart_session",
	"cart.cookie_secure": false,
	"cart.cookie_path":   "/",

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.metrics_enabled":         false,
	"telemetry.logs_export_enabled":     false,
	"telemetry.metrics_export_enabled":  false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.profiling_enabled":       false,
	"telemetry.profiling_server":        "",
	"telemetry.profiling_user":          "",
	"telemetry.profiling_password":      "",

	"printing.enabled":     false,
	"printing.chrome_path": "",
	"printing.timeout":     30 * time.Second,
	"printing.shop_name":   "Dental Shop",
	"printing.shop_phone":  "",
}

// Load reads the configuration. Later sources win: built-in defaults,
// config.toml (in ., ./config or /app), a .env file, then DENTAL_*
// environment variables such as DENTAL_DATABASE_PASSWORD.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./config", "/app"} {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.derive()
	return &cfg, nil
}

// derive fills settings whose default depends on other settings
func (c *Config) derive() {
	// outside production, no database host means a local SQLite file
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
		if c.Database.Host == "" && !c.App.IsProduction() {
			c.Database.Driver = DriverSQLite
		}
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.JWT.Secret == "" && !c.App.IsProduction() {
		c.JWT.Secret = developmentJWTSecret
	}
	if c.JWT.RefreshSecret == "" {
		c.JWT.RefreshSecret = c.JWT.Secret
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.App.Name
	}
}

// validate reports every invalid setting at once
func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	db := c.Database
	if db.Driver != DriverPostgres && db.Driver != DriverSQLite {
		fail("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, db.Driver)
	}
	if db.MaxOpenConns <= 0 {
		fail("database.max_open_conns must be positive")
	}
	if db.MaxIdleConns < 0 {
		fail("database.max_idle_conns cannot be negative")
	}
	if db.MaxIdleConns > db.MaxOpenConns {
		fail("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			fail("storage.s3_bucket is required when storage.driver is s3")
		}
	default:
		fail("storage.driver must be %q or %q, got %q", StorageLocal, StorageS3, c.Storage.Driver)
	}

	if c.StockAlert.PollInterval < time.Second {
		fail("stock_alert.poll_interval must be at least 1s")
	}

	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		fail("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", r)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		fail("telemetry.profiling_server is required when profiling is enabled")
	}

	if c.App.IsProduction() {
		errs = append(errs, c.productionProblems()...)
	}
	return errors.Join(errs...)
}

func (c *Config) productionProblems() []error {
	var errs []error
	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("jwt.secret is required in production"))
	case len(c.JWT.Secret) < 32:
		errs = append(errs, errors.New("jwt.secret must be at least 32 characters in production"))
	}
	if c.Database.Driver != DriverPostgres {
		errs = append(errs, errors.New("database.driver must be postgres in production"))
	}
	if c.Database.Password == "" {
		errs = append(errs, errors.New("database.password is required in production"))
	}
	if c.Database.SSLMode == "disable" {
		errs = append(errs, errors.New("database.sslmode cannot be 'disable' in production"))
	}
	if !c.Cart.CookieSecure {
		errs = append(errs, errors.New("cart.cookie_secure must be true in production"))
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		errs = append(errs, errors.New("http.cors_allow_origins cannot be '*' in production"))
	}
	if c.Telemetry.DBLogFullSQL {
		errs = append(errs, errors.New("telemetry.db_log_full_sql must be false in production"))
	}
	return errs
}
