package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultExportInterval is how often the stdout exporter flushes.
const DefaultExportInterval = 30 * time.Second

// ShutdownFunc flushes and stops an installed provider.
type ShutdownFunc func(ctx context.Context) error

// InstallStdout sets a global MeterProvider that periodically writes
// metrics as JSON to w. The provider also flushes on shutdown.
func InstallStdout(w io.Writer, interval time.Duration) (ShutdownFunc, error) {
	if interval <= 0 {
		interval = DefaultExportInterval
	}

	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create stdout metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
