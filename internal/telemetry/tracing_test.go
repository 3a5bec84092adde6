package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupNoneKeepsDefaultProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(Options{Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupStdoutExportsSpans(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := Setup(Options{Exporter: "STDOUT", ServiceName: "portfolio-test", Writer: &out})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "projects.list")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, out.String(), `"Name":"projects.list"`)
	assert.Contains(t, out.String(), "portfolio-test")
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := Setup(Options{Exporter: "zipkin"})
	assert.Error(t, err)
}
