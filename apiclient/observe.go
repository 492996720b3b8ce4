package apiclient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// observe tags ctx with a call ID, opens the dispatch span when tracing is
// on and returns the func that logs and records the terminal outcome.
func (c *Client[A]) observe(ctx context.Context, api A, ep Endpoint, policy StubPolicy) (context.Context, func(error)) {
	callID := uuid.NewString()
	ctx = logger.ContextWithCallID(ctx, callID)
	name := EndpointName(api)

	log := c.opts.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldEndpoint, name,
		logger.FieldMethod, string(ep.Method),
		logger.FieldStub, policy.String(),
	))

	var span trace.Span
	if c.opts.tracing {
		ctx, span = observability.StartSpan(ctx, observability.SpanDispatch)
		observability.SetSpanAttribute(ctx, observability.AttrServiceName, c.opts.name)
		observability.SetSpanAttribute(ctx, observability.AttrCallID, callID)
		observability.SetSpanAttribute(ctx, observability.AttrEndpoint, name)
		observability.SetSpanAttribute(ctx, observability.AttrStubMode, policy.String())
	}

	metrics := c.opts.metrics
	if metrics != nil {
		metrics.RecordDispatchStart(ctx)
	}
	log.Debug("dispatch started")
	start := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(start)
		outcome := outcomeLabel(err)
		fields := logger.MergeWithDuration(logger.Fields(logger.FieldOutcome, outcome), elapsed)

		var fixtureErr *FixtureError
		switch {
		case err == nil:
			log.Debug("dispatch ok", fields)
		case errors.As(err, &fixtureErr):
			log.Error("fixture setup broken", logger.MergeWithError(fields, err))
		case isCancellation(err):
			log.Debug("dispatch cancelled", logger.MergeWithError(fields, err))
		default:
			log.Warn("dispatch failed", logger.MergeWithError(fields, err))
		}

		if metrics != nil {
			metrics.RecordDispatchEnd(ctx, c.opts.name, policy.Mode().String(), outcome, elapsed)
			if err != nil {
				metrics.RecordFailure(ctx, outcome, c.opts.name)
			}
		}

		if span != nil {
			observability.SetSpanAttribute(ctx, observability.AttrOutcome, outcome)
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			span.End()
		}
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func outcomeLabel(err error) string {
	var fixtureErr *FixtureError
	switch {
	case err == nil:
		return "success"
	case isCancellation(err):
		return "cancelled"
	case errors.As(err, &fixtureErr):
		return "fixture_error"
	}
	if k := KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}
