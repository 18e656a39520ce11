// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Forecast ForecastConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string
	IngestPort     string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the keyword/value connection string understood by both the
// pq and pgx drivers.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AppConfig struct {
	DataDir     string
	ExportDir   string
	HistoryFile string
}

// ForecastConfig tunes the predictive restock pipeline.
type ForecastConfig struct {
	HorizonMonths        int
	MinTrainMonths       int
	TrainWorkers         int
	SnapshotPath         string
	SchedulerEnabled     bool
	SchedulerDelaySecs   int
	SchedulerPeriodHours int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// StorageConfig points at an optional object store used to mirror the
// model snapshot across restarts/instances. Backend picks the client:
// "minio" (any S3-compatible endpoint), "s3" (AWS-style region signing),
// or "local" (a mounted volume).
type StorageConfig struct {
	Backend   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	LocalDir  string
	UseSSL    bool
}

// Enabled reports whether any mirror backend is configured.
func (c StorageConfig) Enabled() bool {
	if strings.EqualFold(c.Backend, "local") {
		return c.LocalDir != ""
	}
	return c.Endpoint != ""
}

// DriveConfig points at the shared Drive folder holding the curated history
// workbook. Disabled when CredentialsFile is empty. A positive watch
// interval makes the ingest server poll the folder and sync automatically.
type DriveConfig struct {
	CredentialsFile   string
	FolderID          string
	WatchIntervalMins int
}

type AuthConfig struct {
	JWTSecret  string
	CookieName string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("INGEST_PORT", "8081")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_LOG_LEVEL", "info")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "itrack")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
		viper.SetDefault("APP_DATA_DIR", "./data")
		viper.SetDefault("APP_EXPORT_DIR", "./data/exports")
		viper.SetDefault("APP_HISTORY_FILE", "./data/uploads/history.xlsx")
		viper.SetDefault("FORECAST_HORIZON_MONTHS", 6)
		viper.SetDefault("FORECAST_MIN_TRAIN_MONTHS", 12)
		viper.SetDefault("FORECAST_TRAIN_WORKERS", 4)
		viper.SetDefault("FORECAST_SNAPSHOT_PATH", "./data/models/forecast_models.json")
		viper.SetDefault("FORECAST_SCHEDULER_ENABLED", true)
		viper.SetDefault("FORECAST_SCHEDULER_DELAY_SECONDS", 5)
		viper.SetDefault("FORECAST_SCHEDULER_PERIOD_HOURS", 24)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_BACKEND", "minio")
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "itrack-models")
		viper.SetDefault("STORAGE_PREFIX", "snapshots")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_LOCAL_DIR", "")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")
		viper.SetDefault("DRIVE_WATCH_INTERVAL_MINS", 0)
		viper.SetDefault("AUTH_JWT_SECRET", "")
		viper.SetDefault("AUTH_COOKIE_NAME", "access_token")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure data directories exist
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				IngestPort:     viper.GetString("INGEST_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("SERVER_LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:         viper.GetString("DB_HOST"),
				Port:         viper.GetString("DB_PORT"),
				User:         viper.GetString("DB_USER"),
				Password:     viper.GetString("DB_PASSWORD"),
				DBName:       viper.GetString("DB_NAME"),
				SSLMode:      viper.GetString("DB_SSLMODE"),
				MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			},
			App: AppConfig{
				DataDir:     viper.GetString("APP_DATA_DIR"),
				ExportDir:   viper.GetString("APP_EXPORT_DIR"),
				HistoryFile: viper.GetString("APP_HISTORY_FILE"),
			},
			Forecast: ForecastConfig{
				HorizonMonths:        viper.GetInt("FORECAST_HORIZON_MONTHS"),
				MinTrainMonths:       viper.GetInt("FORECAST_MIN_TRAIN_MONTHS"),
				TrainWorkers:         viper.GetInt("FORECAST_TRAIN_WORKERS"),
				SnapshotPath:         viper.GetString("FORECAST_SNAPSHOT_PATH"),
				SchedulerEnabled:     viper.GetBool("FORECAST_SCHEDULER_ENABLED"),
				SchedulerDelaySecs:   viper.GetInt("FORECAST_SCHEDULER_DELAY_SECONDS"),
				SchedulerPeriodHours: viper.GetInt("FORECAST_SCHEDULER_PERIOD_HOURS"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Backend:   viper.GetString("STORAGE_BACKEND"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
				Region:    viper.GetString("STORAGE_REGION"),
				LocalDir:  viper.GetString("STORAGE_LOCAL_DIR"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsFile:   viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderID:          viper.GetString("DRIVE_FOLDER_ID"),
				WatchIntervalMins: viper.GetInt("DRIVE_WATCH_INTERVAL_MINS"),
			},
			Auth: AuthConfig{
				JWTSecret:  viper.GetString("AUTH_JWT_SECRET"),
				CookieName: viper.GetString("AUTH_COOKIE_NAME"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
