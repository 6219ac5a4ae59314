package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ecocampus"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ECOCAMPUS_DB_DSN"
	EnvDBHost = "ECOCAMPUS_DB_HOST"
	EnvDBUser = "ECOCAMPUS_DB_USER"
	EnvDBName = "ECOCAMPUS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Campus        CampusConfig
	Cloudinary    CloudinaryConfig
	Assistant     AssistantConfig
	AirQuality    AirQualityConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Leaderboard   LeaderboardConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOCAMPUS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOCAMPUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOCAMPUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOCAMPUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ECOCAMPUS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ECOCAMPUS_DB_DSN"`
	Driver string `envconfig:"ECOCAMPUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOCAMPUS_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOCAMPUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOCAMPUS_DB_USER"`
	LegacyPassword string `envconfig:"ECOCAMPUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOCAMPUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOCAMPUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOCAMPUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOCAMPUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOCAMPUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOCAMPUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOCAMPUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECOCAMPUS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOCAMPUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOCAMPUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOCAMPUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOCAMPUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOCAMPUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOCAMPUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOCAMPUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ECOCAMPUS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ECOCAMPUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ECOCAMPUS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ECOCAMPUS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOCAMPUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOCAMPUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOCAMPUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOCAMPUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOCAMPUS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginStudentLimit    int           `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_LOGIN_STUDENT_LIMIT" default:"5"`
	LoginIPLimit         int           `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow       time.Duration `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterStudentLimit int           `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_REGISTER_STUDENT_LIMIT" default:"3"`
	RegisterIPLimit      int           `envconfig:"ECOCAMPUS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECOCAMPUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECOCAMPUS_AUTO_MIGRATE" default:"false"`
}

// CampusConfig pins the campus-local calendar used for daily uniqueness
// (check-ins, quizzes, streaks) and the base check-in reward.
type CampusConfig struct {
	TimeZone      string `envconfig:"ECOCAMPUS_CAMPUS_TIMEZONE" default:"Asia/Kolkata"`
	CheckInPoints int    `envconfig:"ECOCAMPUS_CHECKIN_POINTS" default:"10"`
}

type CloudinaryConfig struct {
	CloudName    string `envconfig:"ECOCAMPUS_CLOUDINARY_CLOUD_NAME"`
	UploadPreset string `envconfig:"ECOCAMPUS_CLOUDINARY_UPLOAD_PRESET"`
	MaxUploadMB  int    `envconfig:"ECOCAMPUS_MAX_UPLOAD_MB" default:"10"`
}

type AssistantConfig struct {
	APIKey  string `envconfig:"ECOCAMPUS_ASSISTANT_API_KEY"`
	BaseURL string `envconfig:"ECOCAMPUS_ASSISTANT_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"ECOCAMPUS_ASSISTANT_MODEL" default:"gpt-4o-mini"`
}

type AirQualityConfig struct {
	AQIBaseURL     string `envconfig:"ECOCAMPUS_AQI_BASE_URL" default:"https://air-quality-api.open-meteo.com/v1"`
	GeocodeBaseURL string `envconfig:"ECOCAMPUS_GEOCODE_BASE_URL" default:"https://api.bigdatacloud.net/data"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ECOCAMPUS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ECOCAMPUS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ECOCAMPUS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ActivityTopic        string `envconfig:"ECOCAMPUS_PUBSUB_ACTIVITY_TOPIC" default:"eco-activity-events"`
	ActivitySubscription string `envconfig:"ECOCAMPUS_PUBSUB_ACTIVITY_SUBSCRIPTION" default:"eco-activity-events-worker"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"ECOCAMPUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"ECOCAMPUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"ECOCAMPUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int           `envconfig:"ECOCAMPUS_OUTBOX_RETENTION_DAYS" default:"30"`
	IdempotencyTTL time.Duration `envconfig:"ECOCAMPUS_OUTBOX_IDEMPOTENCY_TTL" default:"72h"`
}

type LeaderboardConfig struct {
	TopLimit int           `envconfig:"ECOCAMPUS_LEADERBOARD_TOP_LIMIT" default:"50"`
	CacheTTL time.Duration `envconfig:"ECOCAMPUS_LEADERBOARD_CACHE_TTL" default:"30s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
