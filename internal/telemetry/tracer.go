package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys.
const (
	AttrBaseURL   = "server.base_url"
	AttrHostname  = "server.hostname"
	AttrPort      = "server.port"
	AttrCommand   = "process.command"
	AttrPID       = "process.pid"
	AttrDecision  = "lifecycle.decision"
	AttrReason    = "health.reason"
	AttrSessionID = "session.id"
	AttrHTTPRoute = "http.route"
)

// Span names.
const (
	SpanLifecycleEnsure = "lifecycle.ensure"
	SpanDetect          = "lifecycle.detect"
	SpanInstall         = "lifecycle.install"
	SpanProbe           = "lifecycle.probe"
	SpanSpawn           = "lifecycle.spawn"
	SpanWait            = "lifecycle.wait"
	SpanShutdown        = "lifecycle.shutdown"
)

func BaseURL(url string) attribute.KeyValue     { return attribute.String(AttrBaseURL, url) }
func Hostname(host string) attribute.KeyValue   { return attribute.String(AttrHostname, host) }
func Port(port int) attribute.KeyValue          { return attribute.Int(AttrPort, port) }
func Command(cmd string) attribute.KeyValue     { return attribute.String(AttrCommand, cmd) }
func PID(pid int) attribute.KeyValue            { return attribute.Int(AttrPID, pid) }
func Decision(d string) attribute.KeyValue      { return attribute.String(AttrDecision, d) }
func Reason(r string) attribute.KeyValue        { return attribute.String(AttrReason, r) }
func SessionID(id string) attribute.KeyValue    { return attribute.String(AttrSessionID, id) }
func HTTPRoute(route string) attribute.KeyValue { return attribute.String(AttrHTTPRoute, route) }

// StartLifecycleSpan starts a child span of the lifecycle procedure.
func StartLifecycleSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartClientSpan starts a client-kind span for an API call.
func StartClientSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return StartSpan(ctx, "api."+method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(HTTPRoute(route)),
	)
}
