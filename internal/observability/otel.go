package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies the process in spans and metrics.
const ServiceName = "ordersync"

// Instruments bundles the tracer and meter providers of the process.
type Instruments struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// Reader exposes in-process metrics collected by the meter provider.
	Reader   *sdkmetric.ManualReader
	shutdown []func(context.Context) error
}

var stdoutWriter io.Writer = os.Stdout

// New sets up meters and, when traceStdout is enabled, a span exporter
// writing to stdout. Traces are dropped otherwise.
func New(ctx context.Context, traceStdout bool, logger *slog.Logger) (*Instruments, error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	inst := &Instruments{}

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	inst.MeterProvider = meterProvider
	inst.Reader = reader
	inst.shutdown = append(inst.shutdown, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	if !traceStdout {
		inst.TracerProvider = tracenoop.NewTracerProvider()
		return inst, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(stdoutWriter))
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	inst.TracerProvider = tracerProvider
	inst.shutdown = append(inst.shutdown, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if logger != nil {
		logger.Info("stdout tracing enabled")
	}

	return inst, nil
}

// Noop returns instruments that record nothing.
func Noop() *Instruments {
	return &Instruments{
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
	}
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

// Shutdown flushes pending spans and metrics.
func (i *Instruments) Shutdown(ctx context.Context) error {
	if i == nil {
		return nil
	}
	var err error
	for j := len(i.shutdown) - 1; j >= 0; j-- {
		err = errors.Join(err, i.shutdown[j](ctx))
	}
	return err
}
