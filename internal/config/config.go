package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds everything the server needs, loaded from environment variables.
// A .env file is read by cmd/server before parsing.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// postgres (profiles, interviews, users)
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"liquidhire"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// mongo (job listings catalog)
	MongoURI       string `env:"MONGO_URI"`
	MongoDatabase  string `env:"MONGO_DB_NAME" envDefault:"liquidhire"`
	JobsCollection string `env:"JOBS_COLLECTION" envDefault:"jobs"`

	// redis (live interview session registry)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev"`

	// LLM provider selection
	AIProvider   string `env:"AI_PROVIDER" envDefault:"groq"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	GroqBaseURL  string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel    string `env:"GROQ_MODEL" envDefault:"llama-3.1-8b-instant"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// interview session engine
	InterviewAPIBase string        `env:"INTERVIEW_API_BASE" envDefault:"http://127.0.0.1:8080"`
	SessionDuration  time.Duration `env:"SESSION_DURATION" envDefault:"15m"`
	SilenceWindow    time.Duration `env:"SILENCE_WINDOW" envDefault:"2s"`
	VolumeThreshold  int           `env:"VOLUME_THRESHOLD" envDefault:"15"`

	// proctoring
	ProctorInterval       time.Duration `env:"PROCTOR_INTERVAL" envDefault:"500ms"`
	ProctorInferenceURL   string        `env:"PROCTOR_INFERENCE_URL"`
	ProctorScoreThreshold float64       `env:"PROCTOR_SCORE_THRESHOLD" envDefault:"0.5"`

	// jobs catalog refresh (external feed, scraping itself lives elsewhere)
	JobsFeedURL         string `env:"JOBS_FEED_URL"`
	JobsRefreshSchedule string `env:"JOBS_REFRESH_SCHEDULE" envDefault:"0 3 * * *"`
	JobsRefreshEnabled  bool   `env:"JOBS_REFRESH_ENABLED" envDefault:"false"`

	// retention sweep
	RetentionSchedule     string        `env:"RETENTION_SCHEDULE" envDefault:"0 4 * * *"`
	RetentionListingAge   time.Duration `env:"RETENTION_LISTING_AGE" envDefault:"720h"`
	RetentionDeletedAge   time.Duration `env:"RETENTION_DELETED_AGE" envDefault:"2160h"`
	RetentionSweepEnabled bool          `env:"RETENTION_SWEEP_ENABLED" envDefault:"true"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// LoadConfig parses the environment into a Config and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.AIProvider != "groq" && cfg.AIProvider != "gemini" {
		return errors.New("unsupported AI provider: " + cfg.AIProvider + ". Currently supported: groq, gemini")
	}
	if cfg.VolumeThreshold < 0 || cfg.VolumeThreshold > 255 {
		return errors.New("VOLUME_THRESHOLD must be within 0-255")
	}
	if cfg.SilenceWindow <= 0 {
		return errors.New("SILENCE_WINDOW must be positive")
	}
	if cfg.SessionDuration <= 0 {
		return errors.New("SESSION_DURATION must be positive")
	}
	return nil
}
