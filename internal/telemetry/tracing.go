// Package telemetry 安装 OpenTelemetry 的全局 TracerProvider。
// store 与 service 层的 span 都从全局 provider 获取 tracer。
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options 选择导出器。Exporter 取值 none 或 stdout。
type Options struct {
	Exporter    string
	ServiceName string
	// Writer 为 stdout 导出器的输出，默认 os.Stdout
	Writer io.Writer
}

// Shutdown 刷新尚未导出的 span 并关闭 provider。
type Shutdown func(context.Context) error

// Setup 按配置安装 TracerProvider。none 时保持 OpenTelemetry 默认的 no-op provider。
func Setup(opts Options) (Shutdown, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Exporter)) {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "stdout":
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		return install(opts.ServiceName, sdktrace.WithBatcher(exporter)), nil
	default:
		return nil, fmt.Errorf("unknown OTEL_TRACES_EXPORTER %q", opts.Exporter)
	}
}

func install(serviceName string, processor sdktrace.TracerProviderOption) Shutdown {
	if serviceName == "" {
		serviceName = "portfolio-cms"
	}
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
