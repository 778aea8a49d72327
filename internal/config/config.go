package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"vgpulse/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Paths         PathsConfig         `yaml:"paths" envconfig:"PATHS"`
	Pipeline      PipelineConfig      `yaml:"pipeline" envconfig:"PIPELINE"`
	Cache         CacheConfig         `yaml:"cache" envconfig:"CACHE"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig holds the parameters of the analytics pipeline
type PipelineConfig struct {
	DatasetFile    string                     `yaml:"dataset_file" envconfig:"DATASET_FILE" validate:"required"`
	CutoffYear     int                        `yaml:"cutoff_year" envconfig:"CUTOFF_YEAR" validate:"min=1950,max=2100"`
	TopCategories  int                        `yaml:"top_categories" envconfig:"TOP_CATEGORIES" validate:"min=1,max=100"`
	DensitySteps   int                        `yaml:"density_steps" envconfig:"DENSITY_STEPS" validate:"min=2,max=10000"`
	ExtentQuantile float64                    `yaml:"extent_quantile" envconfig:"EXTENT_QUANTILE" validate:"gt=0,lte=1"`
	HorizonStart   int                        `yaml:"horizon_start" envconfig:"HORIZON_START" validate:"min=1950,max=2200"`
	HorizonEnd     int                        `yaml:"horizon_end" envconfig:"HORIZON_END" validate:"min=1950,max=2200,gtefield=HorizonStart"`
	LoadTimeout    time.Duration              `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" validate:"gt=0"`
	Manufacturers  []domain.ManufacturerGroup `yaml:"manufacturers" ignored:"true" validate:"required,min=1,dive"`
}

// CacheConfig controls the loaded dataset cache. A zero TTL keeps entries
// until they are invalidated.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gte=0"`
}

// ObservabilityConfig selects OpenTelemetry exporters
type ObservabilityConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load loads configuration from defaults, the config file if one is found,
// and environment variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}

	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}

	if c.Pipeline.HorizonStart > c.Pipeline.CutoffYear+1 {
		return fmt.Errorf("forecast horizon must start no later than %d, got %d",
			c.Pipeline.CutoffYear+1, c.Pipeline.HorizonStart)
	}

	seen := make(map[string]string)
	names := make(map[string]bool)
	for _, group := range c.Pipeline.Manufacturers {
		if names[group.Name] {
			return fmt.Errorf("duplicate manufacturer %q", group.Name)
		}
		names[group.Name] = true

		for _, platform := range group.Platforms {
			if owner, ok := seen[platform]; ok {
				return fmt.Errorf("platform %q assigned to both %s and %s", platform, owner, group.Name)
			}
			seen[platform] = group.Name
		}
	}

	// JSON is the only supported log format
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "app.log")
	}

	return nil
}

// DatasetPath returns the dataset location, resolving a relative
// dataset_file against the data directory.
func (c *Config) DatasetPath() string {
	if filepath.IsAbs(c.Pipeline.DatasetFile) {
		return c.Pipeline.DatasetFile
	}
	// Paths that already point into a directory are taken as given
	if filepath.Base(c.Pipeline.DatasetFile) != c.Pipeline.DatasetFile {
		return filepath.Clean(c.Pipeline.DatasetFile)
	}
	return filepath.Join(c.Paths.DataDir, c.Pipeline.DatasetFile)
}

// ExportPath resolves a file name inside the export directory
func (c *Config) ExportPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ExportDir, name)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    DefaultRequestTimeout + 5*time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, "app.log"),
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			ExportDir: DefaultExportDir,
			LogsDir:   DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			DatasetFile:    DefaultDatasetFile,
			CutoffYear:     DefaultCutoffYear,
			TopCategories:  DefaultTopCategories,
			DensitySteps:   DefaultDensitySteps,
			ExtentQuantile: DefaultExtentQuantile,
			HorizonStart:   DefaultHorizonStart,
			HorizonEnd:     DefaultHorizonEnd,
			LoadTimeout:    DefaultLoadTimeout,
			Manufacturers:  DefaultManufacturers(),
		},
		Observability: ObservabilityConfig{
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
