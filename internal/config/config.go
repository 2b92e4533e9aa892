package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       Env
	Minio     MinioConfig
	Upload    UploadConfig
	Transcode TranscodeConfig
	Media     MediaConfig
	Auth      AuthConfig
	NATS      NATSConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Metrics   MetricsConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:":2112"`
}

type MinioConfig struct {
	Endpoint                 string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	AccessKey                string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey                string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	SourceBucket             string        `envconfig:"MINIO_SOURCE_BUCKET" required:"true"`
	ProcessedBucket          string        `envconfig:"MINIO_PROCESSED_BUCKET" required:"true"`
	UploadCredentialDuration time.Duration `envconfig:"MINIO_UPLOAD_CREDENTIAL_DURATION" default:"15m"`
	UseSSL                   bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type UploadConfig struct {
	MaxPayloadBytes int64         `envconfig:"UPLOAD_MAX_PAYLOAD_BYTES" default:"52428800"` // 0x3200000
	StaleAfter      time.Duration `envconfig:"UPLOAD_STALE_AFTER" default:"24h"`
	CleanupEvery    time.Duration `envconfig:"UPLOAD_CLEANUP_EVERY" default:"1h"`
	CleanupBatch    int           `envconfig:"UPLOAD_CLEANUP_BATCH" default:"100"`
}

type TranscodeConfig struct {
	MaxDurationSeconds int       `envconfig:"TRANSCODE_MAX_DURATION_SECONDS" default:"120"`
	FFmpegArgs         string    `envconfig:"TRANSCODE_FFMPEG_ARGS"`
	MimeTypes          MimeTypes `envconfig:"TRANSCODE_MIME_TYPES"`
	FFprobePath        string    `envconfig:"TRANSCODE_FFPROBE_PATH" default:"ffprobe"`
	FFmpegPath         string    `envconfig:"TRANSCODE_FFMPEG_PATH" default:"ffmpeg"`
	ScratchDir         string    `envconfig:"TRANSCODE_SCRATCH_DIR"`
	CacheControl       string    `envconfig:"TRANSCODE_CACHE_CONTROL" default:"max-age=31536000"`
}

// DefaultFFmpegArgs renders a scaled, fast-start mp4 and a poster from the first frame.
const DefaultFFmpegArgs = `-c:a copy -vf scale='min(320\,iw):-2' -movflags +faststart out.mp4 -vf scale='min(320\,iw):-2' -vframes 1 out.png`

// MaxDuration returns the probe ceiling as a duration.
func (t TranscodeConfig) MaxDuration() time.Duration {
	return time.Duration(t.MaxDurationSeconds) * time.Second
}

type MediaConfig struct {
	PublicOrigin string `envconfig:"MEDIA_PUBLIC_ORIGIN" required:"true"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
}

type NATSConfig struct {
	URL          string        `envconfig:"NATS_URL" required:"true"`
	StreamName   string        `envconfig:"NATS_STREAM_NAME" required:"true"`
	ConsumerName string        `envconfig:"NATS_CONSUMER_NAME" required:"true"`
	Subject      string        `envconfig:"NATS_SUBJECT" required:"true"`
	AckWait      time.Duration `envconfig:"NATS_ACK_WAIT" default:"2m"`
	MaxDeliver   int           `envconfig:"NATS_MAX_DELIVER" default:"5"`
	RetryDelay   time.Duration `envconfig:"NATS_RETRY_DELAY" default:"5s"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// MimeTypes maps an output extension (without dot) to its content type.
// It is read from a JSON object, e.g. {"png":"image/png","mp4":"video/mp4"}.
type MimeTypes map[string]string

// DefaultMimeTypes covers the outputs of DefaultFFmpegArgs.
func DefaultMimeTypes() MimeTypes {
	return MimeTypes{"png": "image/png", "mp4": "video/mp4"}
}

// Decode implements envconfig.Decoder.
func (m *MimeTypes) Decode(value string) error {
	decoded := make(map[string]string)
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return fmt.Errorf("invalid mime type table: %w", err)
	}
	*m = decoded
	return nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Transcode.FFmpegArgs == "" {
		cfg.Transcode.FFmpegArgs = DefaultFFmpegArgs
	}
	if len(cfg.Transcode.MimeTypes) == 0 {
		cfg.Transcode.MimeTypes = DefaultMimeTypes()
	}

	return &cfg, nil
}
