package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "标度", cfg.Invoice.CompanyKeyword)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, float64(144), cfg.Report.RenderDPI)
	assert.True(t, cfg.Report.RenderPDFPages)
	assert.Equal(t, 72*time.Hour, cfg.Report.Retention)
	assert.Equal(t, DefaultFontCandidates, cfg.Report.Fonts)
	assert.Empty(t, cfg.Database.MigrationsDir)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
invoice:
  company_keyword: 某某
report:
  fonts: [/fonts/a.ttf]
  retention: 24h
  sweep_schedule: "@hourly"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("UPLOAD_DIR", "/srv/uploads")
	t.Setenv("DATABASE_PATH", "/srv/db.sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "某某", cfg.Invoice.CompanyKeyword)
	assert.Equal(t, []string{"/fonts/a.ttf"}, cfg.Report.Fonts)
	assert.Equal(t, 24*time.Hour, cfg.Report.Retention)
	assert.Equal(t, "/srv/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "/srv/db.sqlite", cfg.Database.Path)

	t.Run("keyword env wins over file", func(t *testing.T) {
		t.Setenv("COMPANY_NAME_KEYWORD", "标度科技")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "标度科技", cfg.Invoice.CompanyKeyword)
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no database", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"no upload dir", func(c *Config) { c.Storage.UploadDir = "" }, "storage.upload_dir"},
		{"blank keyword", func(c *Config) { c.Invoice.CompanyKeyword = "  " }, "company_keyword"},
		{"zero dpi", func(c *Config) { c.Report.RenderDPI = 0 }, "render_dpi"},
		{"bad schedule", func(c *Config) { c.Report.SweepSchedule = "every day" }, "sweep_schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("empty schedule disables sweeping", func(t *testing.T) {
		cfg := valid()
		cfg.Report.SweepSchedule = ""
		assert.NoError(t, cfg.Validate())
	})
}
