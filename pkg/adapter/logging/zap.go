// pkg/adapter/logging/zap.go

// Package logging implements the domain logger on top of zap. Every field
// set, default or per call, passes through the configured FieldRedactor
// before zap encodes it.
package logging

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	"github.com/damianoneill/go-obfuscate/pkg/domain/options"
)

var (
	_ domainlog.LeveledLogger       = (*ZapLogger)(nil)
	_ domainlog.RuntimeConfigurable = (*ZapLogger)(nil)
	_ domainlog.Factory             = (*Factory)(nil)
)

type ZapLogger struct {
	logger   *zap.Logger
	level    domainlog.Level
	atom     zap.AtomicLevel
	redactor domainlog.FieldRedactor
}

type ZapOptions struct {
	domainlog.LoggerOptions
	Development bool
	// Output replaces stdout as the log destination
	Output zapcore.WriteSyncer
}

type ZapOption = options.Option[ZapOptions]

// WithDevelopment enables development mode
func WithDevelopment(enabled bool) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		o.Development = enabled
		return nil
	})
}

// WithOutput sends log entries to ws instead of stdout
func WithOutput(ws zapcore.WriteSyncer) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		if ws == nil {
			return fmt.Errorf("output must not be nil")
		}
		o.Output = ws
		return nil
	})
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewLogger(opts ...domainlog.Option) (domainlog.LeveledLogger, error) {
	return f.NewLoggerWithOptions(opts, nil)
}

// NewLoggerWithOptions creates a logger with both domain and Zap options
func (f *Factory) NewLoggerWithOptions(dopts []domainlog.Option, zopts []ZapOption) (domainlog.LeveledLogger, error) {
	o := ZapOptions{LoggerOptions: domainlog.DefaultOptions()}

	if err := options.Apply(&o.LoggerOptions, dopts...); err != nil {
		return nil, fmt.Errorf("applying domain options: %w", err)
	}
	if err := options.Apply(&o, zopts...); err != nil {
		return nil, fmt.Errorf("applying zap options: %w", err)
	}
	domainlog.WithDefaults(&o.LoggerOptions)

	return f.createLogger(o)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func (f *Factory) createLogger(zopts ZapOptions) (domainlog.LeveledLogger, error) {
	atom := zap.NewAtomicLevelAt(convertToZapLevel(zopts.Level))
	zapOpts := []zap.Option{zap.AddCallerSkip(1), zap.AddCaller()}
	if zopts.Development {
		zapOpts = append(zapOpts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	var logger *zap.Logger
	if zopts.Output != nil {
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zopts.Output, atom)
		logger = zap.New(core, zapOpts...)
	} else {
		config := zap.Config{
			Level:             atom,
			Development:       zopts.Development,
			DisableStacktrace: !zopts.Development,
			Encoding:          "json",
			EncoderConfig:     encoderConfig(),
			OutputPaths:       []string{"stdout"},
			ErrorOutputPaths:  []string{"stderr"},
		}
		var err error
		if logger, err = config.Build(zapOpts...); err != nil {
			return nil, fmt.Errorf("building zap logger: %w", err)
		}
	}

	if zopts.ServiceName != "" {
		logger = logger.With(zap.String("service", zopts.ServiceName))
	}

	l := &ZapLogger{
		logger:   logger,
		level:    zopts.Level,
		atom:     atom,
		redactor: zopts.Redactor,
	}
	if len(zopts.Fields) > 0 {
		l.logger = l.logger.With(l.fields(zopts.Fields)...)
	}
	return l, nil
}

func (l *ZapLogger) fields(fields domainlog.Fields) []zap.Field {
	return convertFields(domainlog.Redact(l.redactor, fields))
}

func (l *ZapLogger) Debug(msg string) {
	l.logger.Debug(msg)
}

func (l *ZapLogger) Info(msg string) {
	l.logger.Info(msg)
}

func (l *ZapLogger) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *ZapLogger) Error(msg string) {
	l.logger.Error(msg)
}

func (l *ZapLogger) DebugWith(msg string, fields domainlog.Fields) {
	if ce := l.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(l.fields(fields)...)
	}
}

func (l *ZapLogger) InfoWith(msg string, fields domainlog.Fields) {
	l.logger.Info(msg, l.fields(fields)...)
}

func (l *ZapLogger) WarnWith(msg string, fields domainlog.Fields) {
	l.logger.Warn(msg, l.fields(fields)...)
}

func (l *ZapLogger) ErrorWith(msg string, fields domainlog.Fields) {
	l.logger.Error(msg, l.fields(fields)...)
}

func (l *ZapLogger) With(fields domainlog.Fields) domainlog.Logger {
	return l.derive(l.logger.With(l.fields(fields)...))
}

func (l *ZapLogger) WithContext(ctx context.Context) domainlog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return l
	}
	spanCtx := span.SpanContext()
	if !spanCtx.HasTraceID() {
		return l
	}
	logger := l.logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
	if spanCtx.IsSampled() {
		logger = logger.With(zap.Bool("sampled", true))
	}
	return l.derive(logger)
}

func (l *ZapLogger) derive(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{
		logger:   logger,
		level:    l.level,
		atom:     l.atom,
		redactor: l.redactor,
	}
}

func (l *ZapLogger) SetLevel(level domainlog.Level) {
	l.level = level
	l.atom.SetLevel(convertToZapLevel(level))
}

func (l *ZapLogger) GetLevel() domainlog.Level {
	return l.level
}

func (l *ZapLogger) GetConfigHandler() http.Handler {
	return l.atom
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func convertToZapLevel(level domainlog.Level) zapcore.Level {
	switch level {
	case domainlog.DebugLevel:
		return zapcore.DebugLevel
	case domainlog.InfoLevel:
		return zapcore.InfoLevel
	case domainlog.WarnLevel:
		return zapcore.WarnLevel
	case domainlog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func convertFields(fields domainlog.Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
