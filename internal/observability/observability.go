// Package observability configures the process-wide slog logger.
//
// Records always go to a text or JSON handler on the configured writer
// (stderr by default). An exporter additionally bridges them to an
// OpenTelemetry logger provider.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// ServiceName identifies this program in exported records.
const ServiceName = "kintai"

// Options controls Instrument.
type Options struct {
	Level slog.Level

	// Format is "text" (default) or "json".
	Format string

	// Exporter is "none" (default), "stdout", "otlp-http" or "otlp-grpc".
	// OTLP exporters read the standard OTEL_EXPORTER_OTLP_* variables.
	Exporter string

	// Writer receives log lines and stdout exports. Defaults to os.Stderr.
	Writer io.Writer
}

// ShutdownFunc flushes and stops exporting.
type ShutdownFunc func(context.Context) error

// Instrument installs the default slog logger. The returned ShutdownFunc
// must be called before exit so buffered records are exported.
func Instrument(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	switch opts.Format {
	case "", "text":
		handler = slog.NewTextHandler(opts.Writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(opts.Writer, handlerOpts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", opts.Format)
	}

	shutdown := func(context.Context) error { return nil }

	if opts.Exporter != "" && opts.Exporter != "none" {
		exporter, err := newExporter(ctx, opts.Exporter, opts.Writer)
		if err != nil {
			return nil, err
		}

		provider := sdklog.NewLoggerProvider(
			sdklog.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
			sdklog.WithProcessor(minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(opts.Level))),
		)
		global.SetLoggerProvider(provider)

		handler = slogmulti.Fanout(handler, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider)))
		shutdown = provider.Shutdown
	}

	slog.SetDefault(slog.New(handler))
	return shutdown, nil
}

func newExporter(ctx context.Context, name string, w io.Writer) (sdklog.Exporter, error) {
	switch name {
	case "stdout":
		return stdoutlog.New(stdoutlog.WithWriter(w))
	case "otlp-http":
		return otlploghttp.New(ctx)
	case "otlp-grpc":
		return otlploggrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported log exporter: %s", name)
	}
}

func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
