package cli

import (
	"bytes"
	"testing"

	"github.com/SergeiKhy/utm-tracker/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.AppConfig{Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = newLogger(config.AppConfig{Env: "development"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger(config.AppConfig{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"user", "add"},
		{"link", "create"},
		{"stats"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

// TestRootCmd_RequiredFlags обязательные флаги проверяются до подключения к БД
func TestRootCmd_RequiredFlags(t *testing.T) {
	cases := map[string][]string{
		"link create": {"link", "create", "--config", "missing.env", "--user-id", "1"},
		"user add":    {"user", "add", "--config", "missing.env"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			root := NewRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs(args)

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
		})
	}
}

func TestStatsCmd_ExclusiveFlags(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"stats", "--config", "missing.env", "--link-id", "1", "--user-id", "2"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}
