// Package telemetry records refresh and download metrics with OpenTelemetry.
//
// Metrics are pushed over OTLP/HTTP when [Init] is called. Everything else
// records into a no-op meter, and a nil *Instruments records nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const scopeName = "github.com/JonMunkholm/proker"

// Attribute keys for refresh and download metrics.
var (
	AttrSheet   = attribute.Key("sheet.name")
	AttrTrigger = attribute.Key("refresh.trigger")
	AttrStatus  = attribute.Key("status")
)

// Status values of AttrStatus.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Instruments holds the metrics emitted by the sheet service.
type Instruments struct {
	Refreshes         metric.Int64Counter
	RefreshDuration   metric.Float64Histogram
	Fetches           metric.Int64Counter
	FetchDuration     metric.Float64Histogram
	SnapshotFallbacks metric.Int64Counter
}

// Init installs a global meter provider exporting over OTLP/HTTP every
// interval. The returned function flushes and stops the exporter.
func Init(ctx context.Context, serviceName string, interval time.Duration) (*Instruments, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry resource: %w", err)
	}

	exp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	inst, err := New(mp.Meter(scopeName))
	if err != nil {
		return nil, nil, errors.Join(err, mp.Shutdown(ctx))
	}
	return inst, mp.Shutdown, nil
}

// NewNoop returns instruments that discard every measurement.
func NewNoop() *Instruments {
	inst, _ := New(noop.NewMeterProvider().Meter(scopeName))
	return inst
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Instruments, error) {
	refreshes, err := meter.Int64Counter("proker.refresh.count",
		metric.WithDescription("Completed refreshes of all sheets"),
		metric.WithUnit("{refresh}"))
	if err != nil {
		return nil, err
	}

	refreshDuration, err := meter.Float64Histogram("proker.refresh.duration",
		metric.WithDescription("Duration of a full refresh"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter("proker.fetch.count",
		metric.WithDescription("Sheet downloads"),
		metric.WithUnit("{fetch}"))
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram("proker.fetch.duration",
		metric.WithDescription("Duration of one sheet download"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter("proker.snapshot.fallbacks",
		metric.WithDescription("Sheets served from a stored snapshot after a failed download"),
		metric.WithUnit("{sheet}"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Refreshes:         refreshes,
		RefreshDuration:   refreshDuration,
		Fetches:           fetches,
		FetchDuration:     fetchDuration,
		SnapshotFallbacks: fallbacks,
	}, nil
}

// RecordRefresh records one finished refresh.
func (i *Instruments) RecordRefresh(ctx context.Context, trigger string, d time.Duration, err error) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(AttrTrigger.String(trigger), AttrStatus.String(status(err)))
	i.Refreshes.Add(ctx, 1, attrs)
	i.RefreshDuration.Record(ctx, millis(d), attrs)
}

// RecordFetch records one sheet download.
func (i *Instruments) RecordFetch(ctx context.Context, sheet string, d time.Duration, err error) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(AttrSheet.String(sheet), AttrStatus.String(status(err)))
	i.Fetches.Add(ctx, 1, attrs)
	i.FetchDuration.Record(ctx, millis(d), attrs)
}

// RecordFallback records a sheet served from its latest snapshot.
func (i *Instruments) RecordFallback(ctx context.Context, sheet string) {
	if i == nil {
		return
	}
	i.SnapshotFallbacks.Add(ctx, 1, metric.WithAttributes(AttrSheet.String(sheet)))
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
