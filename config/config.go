package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	AWS        AWSConfig
	Automation AutomationConfig
	Supabase   SupabaseConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	BaseURL            string // public base URL, used for local fallback video links
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings for the job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds local video storage settings.
type StorageConfig struct {
	RootDir            string // directory for uploaded video files
	MaxUploadMB        int64  // max video size in MiB
	RetentionDays      int    // local files older than this are archived
	RetentionScanHours int    // hours between retention scans
}

// CloudinaryConfig holds credentials for the remote media host.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// AWSConfig holds AWS credentials and the S3 archive bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ArchiveBucket   string
}

// AutomationConfig holds the Make.com automation trigger webhook URLs.
// Per-flow URLs fall back to the universal one when unset.
type AutomationConfig struct {
	WebhookURL            string
	VideoUploadWebhookURL string
	MeetingIDWebhookURL   string
	TimeoutSeconds        int
}

// SupabaseConfig holds the external transcript source credentials.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// UploadFlowURL returns the trigger URL for the video upload flow.
func (c AutomationConfig) UploadFlowURL() string {
	if c.VideoUploadWebhookURL != "" {
		return c.VideoUploadWebhookURL
	}
	return c.WebhookURL
}

// TranscriptFlowURL returns the trigger URL for the meeting ID flow.
func (c AutomationConfig) TranscriptFlowURL() string {
	if c.MeetingIDWebhookURL != "" {
		return c.MeetingIDWebhookURL
	}
	return c.WebhookURL
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "3000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
			BaseURL:            getEnv("BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "blogposter"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			RootDir:            getEnv("VIDEO_STORAGE_DIR", "storage/videos"),
			MaxUploadMB:        int64(getEnvInt("MAX_UPLOAD_MB", 500)),
			RetentionDays:      getEnvInt("VIDEO_RETENTION_DAYS", 30),
			RetentionScanHours: getEnvInt("RETENTION_SCAN_HOURS", 24),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ArchiveBucket:   getEnv("AWS_S3_ARCHIVE_BUCKET", "blogposter-video-archive"),
		},
		Automation: AutomationConfig{
			WebhookURL:            getEnv("MAKE_WEBHOOK_URL", ""),
			VideoUploadWebhookURL: getEnv("MAKE_VIDEO_UPLOAD_WEBHOOK_URL", ""),
			MeetingIDWebhookURL:   getEnv("MAKE_MEETING_ID_WEBHOOK_URL", ""),
			TimeoutSeconds:        getEnvInt("MAKE_WEBHOOK_TIMEOUT_SEC", 300),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
