package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config は OpenTelemetry の設定です。
type Config struct {
	Enabled     bool
	ServiceName string
	// Interval はメトリクスを書き出す周期です。
	Interval time.Duration
	// Writer が nil なら標準エラー出力に書きます。
	Writer io.Writer
}

// Provider はメトリクスとログのプロバイダをまとめて管理します。
// 無効時はどちらも持たず、グローバルの no-op プロバイダがそのまま使われます。
type Provider struct {
	meters *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider
}

// New はプロバイダを生成し、メータープロバイダをグローバルに登録します。
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
	)

	logExporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		_ = meters.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	logs := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)

	otel.SetMeterProvider(meters)
	return &Provider{meters: meters, logs: logs}, nil
}

// LoggerProvider は otelslog ブリッジ用のプロバイダです。無効時は nil です。
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Shutdown は未送信のデータを書き出してからプロバイダを停止します。
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.meters != nil {
		errs = append(errs, p.meters.Shutdown(ctx))
	}
	if p.logs != nil {
		errs = append(errs, p.logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
