package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.SetErr(&stderr)
	RegisterLoggingFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &stderr
}

func TestGetLoggerLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		want    slog.Level
		wantErr bool
	}{
		{args: nil, want: slog.LevelWarn},
		{args: []string{"--loglevel", "debug"}, want: slog.LevelDebug},
		{args: []string{"--loglevel", "INFO"}, want: slog.LevelInfo},
		{args: []string{"--loglevel", "error"}, want: slog.LevelError},
		{args: []string{"--loglevel", "fatal"}, wantErr: true},
	}

	for _, tt := range tests {
		cmd, _ := newCommand(t, tt.args...)
		got, err := GetLoggerLevel(cmd)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidFlag)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetBaseLogger(t *testing.T) {
	t.Parallel()

	cmd, stderr := newCommand(t, "--logformat", "json", "--loglevel", "info")
	logger, err := GetBaseLogger(cmd)
	require.NoError(t, err)

	logger.Info("hello", "k", "v")
	assert.Contains(t, stderr.String(), `"msg":"hello"`)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cmd, _ = newCommand(t, "--logformat", "xml")
	_, err = GetBaseLogger(cmd)
	require.ErrorIs(t, err, ErrInvalidFlag)
}
