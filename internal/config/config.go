package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Values come from an optional
// YAML file, then from the environment (.env included), then from defaults.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	TTS      TTSConfig      `yaml:"tts"`
	STT      STTConfig      `yaml:"stt"`
	Limits   LimitsConfig   `yaml:"limits"`
	Storage  StorageConfig  `yaml:"storage"`
	Notifier NotifierConfig `yaml:"notifier"`
	Logging  LoggingConfig  `yaml:"logging"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

type HTTPConfig struct {
	Port            string `yaml:"port"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

type TTSConfig struct {
	Engine      string `yaml:"engine"` // edge | elevenlabs | openai
	Voice       string `yaml:"voice"`
	MaxWords    int    `yaml:"max_words"`
	Concurrency int    `yaml:"concurrency"`
	CallTimeout int    `yaml:"call_timeout"` // seconds
	Attempts    int    `yaml:"attempts"`
	TempDir     string `yaml:"temp_dir"`

	EdgeCommand      string `yaml:"edge_command"`
	ElevenLabsAPIKey string `yaml:"elevenlabs_api_key"`
	ElevenLabsModel  string `yaml:"elevenlabs_model"`
	OpenAIModel      string `yaml:"openai_model"`
}

type STTConfig struct {
	Engine        string `yaml:"engine"` // openai | deepgram | google
	Language      string `yaml:"language"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	CallTimeout   int    `yaml:"call_timeout"` // seconds

	OpenAIModel       string `yaml:"openai_model"`
	DeepgramAPIKey    string `yaml:"deepgram_api_key"`
	DeepgramModel     string `yaml:"deepgram_model"`
	GoogleCredentials string `yaml:"google_credentials"`
	GoogleSampleRate  int    `yaml:"google_sample_rate"`
}

type LimitsConfig struct {
	MaxTextChars      int   `yaml:"max_text_chars"`
	MaxUploadBytes    int64 `yaml:"max_upload_bytes"`
	RequestsPerMinute int   `yaml:"requests_per_minute"`
}

// StorageConfig enables archiving of synthesized files. Empty Endpoint disables it.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Secure    bool   `yaml:"secure"`
}

// NotifierConfig enables Telegram failure alerts. Empty BotToken disables it.
type NotifierConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// OpenAIConfig is shared by the openai TTS and STT engines.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Load reads path (if it exists), .env and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTP.Port, "PORT")

	setString(&c.TTS.Engine, "TTS_ENGINE")
	setString(&c.TTS.Voice, "TTS_VOICE")
	setString(&c.TTS.TempDir, "TEMP_DIR")
	setString(&c.TTS.EdgeCommand, "EDGE_TTS_COMMAND")
	setString(&c.TTS.ElevenLabsAPIKey, "ELEVENLABS_API_KEY")

	setString(&c.STT.Engine, "STT_ENGINE")
	setString(&c.STT.Language, "STT_LANGUAGE")
	setString(&c.STT.DeepgramAPIKey, "DEEPGRAM_API_KEY")
	setString(&c.STT.GoogleCredentials, "GOOGLE_APPLICATION_CREDENTIALS")

	setString(&c.Storage.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&c.Storage.Bucket, "S3_BUCKET")
	setString(&c.Storage.Region, "S3_REGION")

	setString(&c.Notifier.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")

	if err := setInt(&c.TTS.MaxWords, "TTS_MAX_WORDS"); err != nil {
		return err
	}
	if err := setInt(&c.TTS.Concurrency, "TTS_CONCURRENCY"); err != nil {
		return err
	}
	if err := setInt(&c.Limits.MaxTextChars, "MAX_TEXT_CHARS"); err != nil {
		return err
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.Limits.MaxUploadBytes = n
	}
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ADMIN_CHAT_ID: %w", err)
		}
		c.Notifier.AdminChatID = id
	}
	if v := os.Getenv("S3_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("S3_SECURE: %w", err)
		}
		c.Storage.Secure = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10
	}

	if c.TTS.Engine == "" {
		c.TTS.Engine = "edge"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultVoice(c.TTS.Engine)
	}
	if c.TTS.MaxWords == 0 {
		c.TTS.MaxWords = 50
	}
	if c.TTS.Concurrency == 0 {
		c.TTS.Concurrency = 1
	}
	if c.TTS.CallTimeout == 0 {
		c.TTS.CallTimeout = 60
	}
	if c.TTS.Attempts == 0 {
		c.TTS.Attempts = 1
	}
	if c.TTS.TempDir == "" {
		c.TTS.TempDir = os.TempDir()
	}
	if c.TTS.EdgeCommand == "" {
		c.TTS.EdgeCommand = "edge-tts"
	}
	if c.TTS.ElevenLabsModel == "" {
		c.TTS.ElevenLabsModel = "eleven_multilingual_v2"
	}
	if c.TTS.OpenAIModel == "" {
		c.TTS.OpenAIModel = "tts-1"
	}

	if c.STT.Engine == "" {
		c.STT.Engine = "openai"
	}
	if c.STT.MaxConcurrent == 0 {
		c.STT.MaxConcurrent = 4
	}
	if c.STT.CallTimeout == 0 {
		c.STT.CallTimeout = 120
	}
	if c.STT.OpenAIModel == "" {
		c.STT.OpenAIModel = "whisper-1"
	}
	if c.STT.DeepgramModel == "" {
		c.STT.DeepgramModel = "nova-2"
	}
	if c.STT.GoogleSampleRate == 0 {
		c.STT.GoogleSampleRate = 48000
	}
	if c.STT.Language == "" && c.STT.Engine == "google" {
		c.STT.Language = "en-US"
	}

	if c.Limits.MaxTextChars == 0 {
		c.Limits.MaxTextChars = 20000
	}
	if c.Limits.MaxUploadBytes == 0 {
		c.Limits.MaxUploadBytes = 25 << 20
	}
	if c.Limits.RequestsPerMinute == 0 {
		c.Limits.RequestsPerMinute = 60
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func defaultVoice(engine string) string {
	switch engine {
	case "elevenlabs":
		return "EXAVITQu4vr4xnSDxMaL" // Rachel
	case "openai":
		return "alloy"
	default:
		return "en-US-JennyNeural"
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := c.TTS.Validate(); err != nil {
		return fmt.Errorf("tts config: %w", err)
	}
	if err := c.STT.Validate(); err != nil {
		return fmt.Errorf("stt config: %w", err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Notifier.Validate(); err != nil {
		return fmt.Errorf("notifier config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if (c.TTS.Engine == "openai" || c.STT.Engine == "openai") && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai engine requires OPENAI_API_KEY")
	}
	return nil
}

func (t *TTSConfig) Validate() error {
	switch t.Engine {
	case "edge", "elevenlabs", "openai":
	default:
		return fmt.Errorf("engine must be one of [edge, elevenlabs, openai], got '%s'", t.Engine)
	}
	if t.Engine == "elevenlabs" && t.ElevenLabsAPIKey == "" {
		return fmt.Errorf("elevenlabs engine requires ELEVENLABS_API_KEY")
	}
	if t.MaxWords < 1 {
		return fmt.Errorf("max_words must be at least 1, got %d", t.MaxWords)
	}
	if t.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", t.Concurrency)
	}
	if t.CallTimeout < 1 {
		return fmt.Errorf("call_timeout must be at least 1 second, got %d", t.CallTimeout)
	}
	if t.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", t.Attempts)
	}
	return nil
}

func (s *STTConfig) Validate() error {
	switch s.Engine {
	case "openai", "google":
	case "deepgram":
		if s.DeepgramAPIKey == "" {
			return fmt.Errorf("deepgram engine requires DEEPGRAM_API_KEY")
		}
	default:
		return fmt.Errorf("engine must be one of [openai, deepgram, google], got '%s'", s.Engine)
	}
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", s.MaxConcurrent)
	}
	if s.CallTimeout < 1 {
		return fmt.Errorf("call_timeout must be at least 1 second, got %d", s.CallTimeout)
	}
	return nil
}

func (l *LimitsConfig) Validate() error {
	if l.MaxTextChars < 1 {
		return fmt.Errorf("max_text_chars must be positive, got %d", l.MaxTextChars)
	}
	if l.MaxUploadBytes < 1 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", l.MaxUploadBytes)
	}
	if l.RequestsPerMinute < 1 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", l.RequestsPerMinute)
	}
	return nil
}

func (s *StorageConfig) Validate() error {
	if !s.Enabled() {
		return nil
	}
	if s.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty when endpoint is set")
	}
	if s.AccessKey == "" || s.SecretKey == "" {
		return fmt.Errorf("access_key and secret_key are required when endpoint is set")
	}
	return nil
}

func (s *StorageConfig) Enabled() bool { return s.Endpoint != "" }

func (n *NotifierConfig) Validate() error {
	if n.Enabled() && n.AdminChatID == 0 {
		return fmt.Errorf("admin_chat_id is required when bot_token is set")
	}
	return nil
}

func (n *NotifierConfig) Enabled() bool { return n.BotToken != "" }

func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
}

func (t *TTSConfig) CallTimeoutDuration() time.Duration {
	return time.Duration(t.CallTimeout) * time.Second
}

func (s *STTConfig) CallTimeoutDuration() time.Duration {
	return time.Duration(s.CallTimeout) * time.Second
}

func (h *HTTPConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(h.ShutdownTimeout) * time.Second
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
