package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYuanToCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12", 1200, false},
		{"12.5", 1250, false},
		{"12.05", 1205, false},
		{"0.01", 1, false},
		{"￥1,234.56", 123456, false},
		{" ¥88.00 ", 8800, false},
		{"12.345", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"92233720368547757.99", 9223372036854775799, false},
		{"92233720368547758", 0, true},
		{"100000000000000000.00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYuanToCents(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "北京出差", SanitizeString(" 北京\x00出差\n"))
}

func TestNewLogger(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "logs", "server.log")
		logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: out, Format: "json"})
		require.NoError(t, err)

		logger.Info("hello")
		_ = logger.Sync()

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, string(data), `"timestamp"`)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr", Format: "console"})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(-1))
		assert.True(t, logger.Core().Enabled(0))
	})

	t.Run("cli logger is quiet by default", func(t *testing.T) {
		logger, err := NewCLILogger(false)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(0))
	})
}
