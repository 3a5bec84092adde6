package store

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/portfoliocms/internal/db"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("span %q not recorded", name)
	return nil
}

func TestSpansSkipNotFound(t *testing.T) {
	recorder := recordSpans(t)
	skills := newSQLSkills(t)

	_, err := skills.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	span := endedSpan(t, recorder, "store.sql.get")
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Empty(t, span.Events())
}

func TestSpansRecordBackendErrors(t *testing.T) {
	recorder := recordSpans(t)
	srv, _ := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":"XX000","message":"boom"}`)
	})

	skills, err := NewRESTStore[db.Skill](RESTOptions{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = skills.List(context.Background(), Query{})
	require.Error(t, err)

	span := endedSpan(t, recorder, "store.rest.list")
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Status().Description, "boom")
	require.NotEmpty(t, span.Events())
	assert.Equal(t, "exception", span.Events()[0].Name)

	var table string
	for _, kv := range span.Attributes() {
		if kv.Key == "db.table" {
			table = kv.Value.AsString()
		}
	}
	assert.Equal(t, "skills", table)
}
