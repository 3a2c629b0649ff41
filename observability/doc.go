// Package observability wires OpenTelemetry tracing for authkit.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("authkitd"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "authn.Refresh")
//	defer observability.EndSpan(span, err)
//
// Without InitTracer, spans go to the global no-op provider.
package observability
