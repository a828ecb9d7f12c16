package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Options はロガーの出力先です。
type Options struct {
	Level string
	// Console が nil なら標準出力に書きます。
	Console io.Writer
	// File が nil でなければコンソールと同じ内容を書き写します。
	File io.Writer
	// Provider が nil でなければ otelslog ブリッジ経由でも出力します。
	Provider    *sdklog.LoggerProvider
	ServiceName string
}

// ParseLevel は文字列のログレベルを解釈します。未知の値は info です。
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は opts に従ってロガーを組み立てます。
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	handlers := []slog.Handler{slog.NewTextHandler(console, handlerOpts)}
	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, handlerOpts))
	}
	if opts.Provider != nil {
		name := opts.ServiceName
		if name == "" {
			name = "mashbot"
		}
		handlers = append(handlers, otelslog.NewHandler(name, otelslog.WithLoggerProvider(opts.Provider)))
	}
	return slog.New(NewMultiHandler(handlers...))
}

// Setup はロガーを作り、slog のデフォルトとして登録します。
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	logger.Info("logging initialized", "level", ParseLevel(opts.Level).String())
	return logger
}
