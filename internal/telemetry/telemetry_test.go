package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInit_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{Enabled: true, Exporter: ExporterStdout, Writer: &buf}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := Tracer("test").Start(context.Background(), "evaluate")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), `"Name":"evaluate"`) {
		t.Fatalf("span not exported: %s", buf.String())
	}
}

func TestInit_UnknownExporter(t *testing.T) {
	if _, err := Init(context.Background(), Config{Enabled: true, Exporter: "jaeger"}, nil); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}
