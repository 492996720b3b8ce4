package apiclient

import (
	"context"
	"fmt"
)

// Outcome is the terminal state of one call: a value or an error.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Unwrap returns the value and error.
func (o Outcome[T]) Unwrap() (T, error) { return o.Value, o.Err }

// Request dispatches api and blocks until it succeeds, fails, or ctx ends.
// Failures are *NetworkError, *FixtureError, or ctx.Err() on cancellation.
func Request[T any, A API](ctx context.Context, c *Client[A], api A) (T, error) {
	return execute[T](ctx, c, api).Unwrap()
}

// execute runs one call: resolve, pick a branch, produce one outcome.
func execute[T any, A API](ctx context.Context, c *Client[A], api A) (out Outcome[T]) {
	ep := c.endpointFn(api)
	policy := c.stubFn(api)

	ctx, finish := c.observe(ctx, api, ep, policy)
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("apiclient: panic: %v", r)
			}
			finish(err)
			panic(r)
		}
		finish(out.Err)
	}()

	if err := ctx.Err(); err != nil {
		return Outcome[T]{Err: err}
	}

	var (
		v   T
		err error
	)
	if policy.Stubbed() {
		v, err = stub[T](ctx, c, ep, policy)
	} else {
		v, err = live[T](ctx, c, ep)
	}
	// No outcome survives a cancellation that lands after the branch returns.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome[T]{Err: ctxErr}
	}
	return Outcome[T]{Value: v, Err: err}
}

func live[T any, A API](ctx context.Context, c *Client[A], ep Endpoint) (T, error) {
	var zero T
	req, err := ep.NewRequest(ctx)
	if err != nil {
		return zero, err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, errUnknown(err.Error(), err)
	}

	v, err := HandleResponse[T](resp)
	if err != nil && IsKind(err, UnknownError) && ctx.Err() != nil {
		return zero, ctx.Err()
	}
	return v, err
}

func stub[T any, A API](ctx context.Context, c *Client[A], ep Endpoint, policy StubPolicy) (T, error) {
	var zero T
	if err := policy.Wait(ctx); err != nil {
		return zero, err
	}
	if ep.Mock == nil {
		return zero, errUnknown("no mock data", nil)
	}
	if ep.Mock.SendError {
		return zero, errRequest("stubbed request failed")
	}

	v, err := LoadFixture[T](c.opts.fixtures, ep.Mock.FixtureName, ep.Mock.FixtureKind)
	if err != nil && c.opts.strict {
		panic(err)
	}
	return v, err
}

