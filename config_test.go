package reflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/som"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, som.DefaultConfig(), cfg.Construction)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "overrides merge with defaults",
			yaml: "construction:\n  word_gap_ratio: 2\n  separator:\n    min_separation: 5\nlog_level: debug\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 2.0, cfg.Construction.WordGapRatio)
				assert.Equal(t, 5.0, cfg.Construction.Separator.MinSeparation)
				assert.Equal(t, som.DefaultConfig().Separator.Fudge, cfg.Construction.Separator.Fudge)
				assert.Equal(t, som.DefaultConfig().LineGapRatio, cfg.Construction.LineGapRatio)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{name: "unknown key", yaml: "construction:\n  word_gap: 2\n", wantErr: true},
		{name: "invalid threshold", yaml: "construction:\n  cell_shrink: 0.5\n", wantErr: true},
		{name: "invalid level", yaml: "log_level: chatty\n", wantErr: true},
		{name: "malformed", yaml: "construction: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
