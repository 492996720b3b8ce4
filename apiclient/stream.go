package apiclient

import (
	"context"
	"sync"
)

// Sink receives the events of one subscription. A successful call delivers
// OnValue then OnComplete; a failed call delivers OnError only. Nil
// callbacks are skipped.
type Sink[T any] struct {
	OnValue    func(T)
	OnError    func(error)
	OnComplete func()
}

// Publisher is the stream form of a call. It is cold: every Subscribe runs
// the call again.
type Publisher[T any] struct {
	run func(ctx context.Context) Outcome[T]
}

// Stream returns a publisher for api. Nothing runs until Subscribe.
func Stream[T any, A API](c *Client[A], api A) *Publisher[T] {
	return &Publisher[T]{run: func(ctx context.Context) Outcome[T] {
		return execute[T](ctx, c, api)
	}}
}

// Subscribe runs the call in its own goroutine and delivers its outcome to
// sink. Cancelling ctx or the subscription before the outcome is reached
// stops the call and nothing is delivered.
func (p *Publisher[T]) Subscribe(ctx context.Context, sink Sink[T]) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer cancel()

		out := p.run(ctx)
		if !s.terminate(ctx) {
			return
		}
		if out.Err != nil {
			if sink.OnError != nil {
				sink.OnError(out.Err)
			}
			return
		}
		if sink.OnValue != nil {
			sink.OnValue(out.Value)
		}
		if sink.OnComplete != nil {
			sink.OnComplete()
		}
	}()

	return s
}

// Await subscribes and blocks for the outcome. It returns ctx.Err() when
// ctx ends first.
func (p *Publisher[T]) Await(ctx context.Context) (T, error) {
	ch := make(chan Outcome[T], 1)
	sub := p.Subscribe(ctx, Sink[T]{
		OnValue: func(v T) { ch <- Outcome[T]{Value: v} },
		OnError: func(err error) { ch <- Outcome[T]{Err: err} },
	})

	<-sub.Done()
	select {
	case out := <-ch:
		return out.Unwrap()
	default:
		var zero T
		return zero, ctx.Err()
	}
}

// Subscription is a handle on one running stream call.
type Subscription struct {
	mu         sync.Mutex
	cancelled  bool
	terminated bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// Cancel stops the call. If the outcome has not been delivered yet it
// never will be, and any pending stub timer is stopped.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if !s.terminated {
		s.cancelled = true
	}
	s.mu.Unlock()
	s.cancel()
}

// Done is closed once the subscription has finished, delivered or not.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// terminate marks the outcome as delivered. It returns false when the
// subscription was cancelled first.
func (s *Subscription) terminate(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || ctx.Err() != nil {
		s.cancelled = true
		return false
	}
	s.terminated = true
	return true
}
