// Package log builds the command logger from the --loglevel and --logformat
// flags. Log output goes to the command's error stream so that results on
// standard output stay machine readable.
package log

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

const (
	FlagLevel  = "loglevel"
	FlagFormat = "logformat"
)

var ErrInvalidFlag = errors.New("invalid logging flag")

// RegisterLoggingFlags adds the logging flags to cmd and all its children.
func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagLevel, "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(FlagFormat, "text", "set the log format (text, json)")
}

// GetBaseLogger builds the logger selected by the flags of cmd.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}
	format := flagValue(cmd, FlagFormat, "text")

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), options)
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), options)
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidFlag, format)
	}

	return slog.New(handler), nil
}

func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	switch value := flagValue(cmd, FlagLevel, "warn"); value {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("%w: log level %q", ErrInvalidFlag, value)
	}
}

func flagValue(cmd *cobra.Command, name, fallback string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return fallback
	}
	return strings.ToLower(strings.TrimSpace(flag.Value.String()))
}
