// Package telemetry exposes tabdeck's Prometheus metrics and
// OpenTelemetry spans.
//
// Metrics implements both reactive.Observer and reconcile.Observer, so a
// single value can be handed to the runtime and to every keyed list:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	rt := reactive.NewRuntime(reactive.WithObserver(m))
//	bar := view.NewTabBar(st, reconcile.WithObserver(m))
//
// Spans use the global tracer provider. Configure it in main before
// starting the server with otel.SetTracerProvider.
package telemetry
