package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Invoice  InvoiceConfig  `mapstructure:"invoice"`
	Report   ReportConfig   `mapstructure:"report"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty uses the embedded set
}

// StorageConfig holds the upload tree location
type StorageConfig struct {
	UploadDir     string `mapstructure:"upload_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// InvoiceConfig holds extraction settings
type InvoiceConfig struct {
	CompanyKeyword string `mapstructure:"company_keyword"`
}

// ReportConfig holds report generation settings
type ReportConfig struct {
	Fonts          []string      `mapstructure:"fonts"`
	RenderPDFPages bool          `mapstructure:"render_pdf_pages"`
	RenderDPI      float64       `mapstructure:"render_dpi"`
	Retention      time.Duration `mapstructure:"retention"`
	SweepSchedule  string        `mapstructure:"sweep_schedule"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// DefaultFontCandidates lists CJK-capable TrueType fonts commonly found on
// Windows, macOS and Linux hosts, in lookup order.
var DefaultFontCandidates = []string{
	"C:/Windows/Fonts/simhei.ttf",
	"C:/Windows/Fonts/simkai.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttf",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/truetype/arphic/uming.ttf",
}

// Load loads configuration from file and environment variables.
// An empty configPath loads defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/fapiao.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 0)
	v.SetDefault("database.migrations_dir", "")

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.max_upload_size", 50<<20)

	v.SetDefault("invoice.company_keyword", "标度")

	v.SetDefault("report.fonts", DefaultFontCandidates)
	v.SetDefault("report.render_pdf_pages", true)
	v.SetDefault("report.render_dpi", 144)
	v.SetDefault("report.retention", 72*time.Hour)
	v.SetDefault("report.sweep_schedule", "0 30 3 * * *")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the deployment overrides
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"invoice.company_keyword": "COMPANY_NAME_KEYWORD",
		"storage.upload_dir":      "UPLOAD_DIR",
		"database.path":           "DATABASE_PATH",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be positive")
	}
	if strings.TrimSpace(c.Invoice.CompanyKeyword) == "" {
		return fmt.Errorf("invoice.company_keyword is required")
	}
	if c.Report.RenderDPI <= 0 {
		return fmt.Errorf("report.render_dpi must be positive")
	}
	if c.Report.Retention < 0 {
		return fmt.Errorf("report.retention must not be negative")
	}
	if c.Report.SweepSchedule != "" {
		parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Report.SweepSchedule); err != nil {
			return fmt.Errorf("report.sweep_schedule invalid: %w", err)
		}
	}
	return nil
}
