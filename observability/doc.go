// Package observability provides OpenTelemetry tracing and metrics for
// API dispatches and the outbound HTTP exchanges behind them.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//	metrics.RecordDispatchEnd(ctx, "users", "never", "success", duration)
package observability
