package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort int            `yaml:"server_port"`
	Log        LogConfig      `yaml:"log"`
	Database   DatabaseConfig `yaml:"database"`
	Events     EventsConfig   `yaml:"events"`
	Storage    StorageConfig  `yaml:"storage"`
	CORS       CORSConfig     `yaml:"cors"`
}

type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API; "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	// Driver is one of "postgres", "pgx" or "sqlite3".
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	UseSSL   bool   `yaml:"use_ssl"`
	// Path is the database file used by the sqlite3 driver.
	Path string `yaml:"path"`
}

type EventsConfig struct {
	// Backend is one of "none", "rabbitmq" or "pubsub".
	Backend  string         `yaml:"backend"`
	Channel  string         `yaml:"channel"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	PubSub   PubSubConfig   `yaml:"pubsub"`
}

type RabbitMQConfig struct {
	URL             string `yaml:"url"`
	PrefetchCount   int    `yaml:"prefetch_count"`
	QueueDurable    bool   `yaml:"queue_durable"`
	QueueAutoDelete bool   `yaml:"queue_auto_delete"`
}

type PubSubConfig struct {
	ProjectID          string `yaml:"project_id"`
	CredentialsFile    string `yaml:"credentials_file"`
	SubscriptionSuffix string `yaml:"subscription_suffix"`
}

type StorageConfig struct {
	// Backend is one of "minio" or "gcs".
	Backend string      `yaml:"backend"`
	Minio   MinioConfig `yaml:"minio"`
	GCS     GCSConfig   `yaml:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Defaults returns the configuration used when neither a config file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		ServerPort: 8080,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "usersvc",
			Password: "password",
			DBName:   "usersvc_db",
			Path:     "usersvc.db",
		},
		Events: EventsConfig{
			Backend: "none",
			Channel: "user-events",
			PubSub: PubSubConfig{
				SubscriptionSuffix: "-sub",
			},
		},
		Storage: StorageConfig{
			Backend: "minio",
			Minio: MinioConfig{
				Endpoint: "localhost:9000",
				Bucket:   "usersvc",
			},
		},
	}
}

// LoadConfig is Load without the config file error.
func LoadConfig() Config {
	cfg, _ := Load()
	return cfg
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and finally the environment. A file that cannot be read or
// parsed is skipped; its error is returned alongside the resulting config.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	base := Defaults()
	var fileErr error
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &base); err != nil {
			base = Defaults()
			fileErr = fmt.Errorf("config file %s: %w", path, err)
		}
	}

	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", base.Database.Driver),
		Host:     getEnv("DB_HOST", base.Database.Host),
		Port:     getEnvInt("DB_PORT", base.Database.Port),
		User:     getEnv("DB_USER", base.Database.User),
		Password: getEnv("DB_PASSWORD", base.Database.Password),
		DBName:   getEnv("DB_NAME", base.Database.DBName),
		UseSSL:   getEnvBool("DB_USE_SSL", base.Database.UseSSL),
		Path:     getEnv("DB_PATH", base.Database.Path),
	}

	eventsConfig := EventsConfig{
		Backend: getEnv("EVENTS_BACKEND", base.Events.Backend),
		Channel: getEnv("EVENTS_CHANNEL", base.Events.Channel),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", base.Events.RabbitMQ.URL),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", base.Events.RabbitMQ.PrefetchCount),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", base.Events.RabbitMQ.QueueDurable),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", base.Events.RabbitMQ.QueueAutoDelete),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", base.Events.PubSub.ProjectID),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", base.Events.PubSub.CredentialsFile),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", base.Events.PubSub.SubscriptionSuffix),
		},
	}

	storageConfig := StorageConfig{
		Backend: getEnv("STORAGE_BACKEND", base.Storage.Backend),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", base.Storage.Minio.Endpoint),
			AccessKey: getEnv("MINIO_ACCESS_KEY", base.Storage.Minio.AccessKey),
			SecretKey: getEnv("MINIO_SECRET_KEY", base.Storage.Minio.SecretKey),
			Bucket:    getEnv("MINIO_BUCKET", base.Storage.Minio.Bucket),
			UseSSL:    getEnvBool("MINIO_USE_SSL", base.Storage.Minio.UseSSL),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", base.Storage.GCS.Bucket),
			ProjectID:       getEnv("GCS_PROJECT_ID", base.Storage.GCS.ProjectID),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", base.Storage.GCS.CredentialsFile),
		},
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", base.ServerPort),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", base.Log.Level),
			Format: getEnv("LOG_FORMAT", base.Log.Format),
		},
		Database: dbConfig,
		Events:   eventsConfig,
		Storage:  storageConfig,
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", base.CORS.AllowedOrigins),
		},
	}, fileErr
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
