package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/cubescout/internal/presence"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Notification backends.
const (
	BackendDesktop = "desktop"
	BackendLog     = "log"
)

type Config struct {
	Notify     NotifyConfig     `yaml:"notify"`
	Detector   DetectorConfig   `yaml:"detector"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Samples    SamplesConfig    `yaml:"samples"`
	Web        WebConfig        `yaml:"web"`
	Preview    PreviewConfig    `yaml:"preview"`
	Log        LogConfig        `yaml:"log"`
}

type NotifyConfig struct {
	Cooldown          time.Duration `yaml:"cooldown"`
	ConfirmationCount int           `yaml:"confirmation_count"`
	StreakTimeout     time.Duration `yaml:"streak_timeout"`
	Message           string        `yaml:"message"`
	Backend           string        `yaml:"backend"` // desktop or log
}

// Policy returns the notification policy built from these settings.
func (c NotifyConfig) Policy() presence.Policy {
	return presence.Policy{
		NotifyCooldown:    c.Cooldown,
		ConfirmationCount: c.ConfirmationCount,
		StreakTimeout:     c.StreakTimeout,
	}
}

type DetectorConfig struct {
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors"`
	MinSize      int     `yaml:"min_size"` // pixels, applied to both edges
}

type RecognizerConfig struct {
	Threshold float64 `yaml:"threshold"`  // 0 disables the unmatched cut-off
	ModelPath string  `yaml:"model_path"` // optional trained model cache
}

type SamplesConfig struct {
	Dir       string  `yaml:"dir"`
	Size      int     `yaml:"size"`
	PerSecond float64 `yaml:"per_second"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"` // 0 disables the status page
}

// Enabled reports whether the status page should be served.
func (c WebConfig) Enabled() bool {
	return c.Port > 0
}

// Addr returns the listen address.
func (c WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PreviewConfig struct {
	MaxSize int `yaml:"max_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for non-negative floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envDuration is envInt for positive durations such as "15s" or "1500ms".
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Defaults returns the embedded defaults without any environment overrides.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

// Load returns the embedded defaults overridden by environment variables.
func Load() *Config {
	d := Defaults()

	return &Config{
		Notify: NotifyConfig{
			Cooldown:          envDuration("NOTIFY_COOLDOWN", d.Notify.Cooldown),
			ConfirmationCount: envInt("CONFIRMATION_COUNT", d.Notify.ConfirmationCount),
			StreakTimeout:     envDuration("STREAK_TIMEOUT", d.Notify.StreakTimeout),
			Message:           envString("NOTIFY_MESSAGE", d.Notify.Message),
			Backend:           envString("NOTIFY_BACKEND", d.Notify.Backend),
		},
		Detector: DetectorConfig{
			ScaleFactor:  envFloat("DETECTOR_SCALE_FACTOR", d.Detector.ScaleFactor),
			MinNeighbors: envInt("DETECTOR_MIN_NEIGHBORS", d.Detector.MinNeighbors),
			MinSize:      envInt("DETECTOR_MIN_SIZE", d.Detector.MinSize),
		},
		Recognizer: RecognizerConfig{
			Threshold: envFloat("RECOGNIZER_THRESHOLD", d.Recognizer.Threshold),
			ModelPath: envString("RECOGNIZER_MODEL_PATH", d.Recognizer.ModelPath),
		},
		Samples: SamplesConfig{
			Dir:       envString("SAMPLES_DIR", d.Samples.Dir),
			Size:      envInt("SAMPLES_SIZE", d.Samples.Size),
			PerSecond: envFloat("SAMPLES_PER_SECOND", d.Samples.PerSecond),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", d.Web.Host),
			Port: envInt("WEB_PORT", d.Web.Port),
		},
		Preview: PreviewConfig{
			MaxSize: envInt("PREVIEW_MAX_SIZE", d.Preview.MaxSize),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", d.Log.Level),
			Format: envString("LOG_FORMAT", d.Log.Format),
		},
	}
}

// Validate reports the first unusable setting, wrapped in presence.ErrConfiguration.
func (c *Config) Validate() error {
	if err := c.Notify.Policy().Validate(); err != nil {
		return err
	}

	switch c.Notify.Backend {
	case BackendDesktop, BackendLog:
	default:
		return fmt.Errorf("%w: unknown notify backend %q", presence.ErrConfiguration, c.Notify.Backend)
	}

	if c.Detector.ScaleFactor <= 1 {
		return fmt.Errorf("%w: detector scale factor must be greater than 1, got %g", presence.ErrConfiguration, c.Detector.ScaleFactor)
	}
	if c.Detector.MinSize <= 0 {
		return fmt.Errorf("%w: detector min size must be positive, got %d", presence.ErrConfiguration, c.Detector.MinSize)
	}
	if c.Samples.Size <= 0 || c.Samples.PerSecond <= 0 {
		return fmt.Errorf("%w: sample size and rate must be positive", presence.ErrConfiguration)
	}
	if c.Preview.MaxSize <= 0 {
		return fmt.Errorf("%w: preview max size must be positive, got %d", presence.ErrConfiguration, c.Preview.MaxSize)
	}
	return nil
}
