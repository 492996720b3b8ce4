package apiclient

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"testing"
	"time"
)

type recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completes int
}

func (r *recorder[T]) sink() Sink[T] {
	return Sink[T]{
		OnValue: func(v T) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.values = append(r.values, v)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
		OnComplete: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completes++
		},
	}
}

func (r *recorder[T]) events() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values), len(r.errs), r.completes
}

func waitDone(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case <-sub.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not finish")
	}
}

func TestStream_ValueThenComplete(t *testing.T) {
	srv := usersServer(t)
	srv.JSON(http.MethodGet, "/users", http.StatusOK, `{"id":7,"name":"Ann"}`)
	client := newTestClient(t, srv, nil)

	var rec recorder[User]
	sub := Stream[User](client, getUser(srv.Host())).Subscribe(context.Background(), rec.sink())
	waitDone(t, sub)

	values, errs, completes := rec.events()
	if values != 1 || errs != 0 || completes != 1 {
		t.Fatalf("expected value+complete, got values=%d errs=%d completes=%d", values, errs, completes)
	}
	if rec.values[0].Name != "Ann" {
		t.Errorf("got %+v", rec.values[0])
	}
}

func TestStream_ErrorOnly(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, ImmediateStub[testAPI])
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok", SendError: true})

	var rec recorder[User]
	sub := Stream[User](client, api).Subscribe(context.Background(), rec.sink())
	waitDone(t, sub)

	values, errs, completes := rec.events()
	if values != 0 || errs != 1 || completes != 0 {
		t.Fatalf("expected error only, got values=%d errs=%d completes=%d", values, errs, completes)
	}
	if !IsKind(rec.errs[0], RequestError) {
		t.Errorf("expected RequestError, got %v", rec.errs[0])
	}
}

func TestStream_NothingRunsUntilSubscribe(t *testing.T) {
	srv := usersServer(t)
	srv.JSON(http.MethodGet, "/users", http.StatusOK, `{"id":7,"name":"Ann"}`)
	client := newTestClient(t, srv, nil)

	pub := Stream[User](client, getUser(srv.Host()))
	time.Sleep(20 * time.Millisecond)
	if srv.TotalHits() != 0 {
		t.Fatal("publisher ran before subscription")
	}

	// Cold: each subscription issues its own call.
	for range 2 {
		if _, err := pub.Await(context.Background()); err != nil {
			t.Fatalf("Await() error = %v", err)
		}
	}
	if got := srv.TotalHits(); got != 2 {
		t.Errorf("expected 2 upstream hits, got %d", got)
	}
}

func TestStream_CancelBeforeDelay(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, DelayedStub[testAPI](time.Minute))
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok"})

	var rec recorder[User]
	sub := Stream[User](client, api).Subscribe(context.Background(), rec.sink())
	time.Sleep(10 * time.Millisecond)
	sub.Cancel()
	waitDone(t, sub)

	if values, errs, completes := rec.events(); values+errs+completes != 0 {
		t.Errorf("cancelled subscription delivered events: values=%d errs=%d completes=%d", values, errs, completes)
	}
}

func TestStream_ParentContextCancelled(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, DelayedStub[testAPI](time.Minute))
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok"})

	ctx, cancel := context.WithCancel(context.Background())
	var rec recorder[User]
	sub := Stream[User](client, api).Subscribe(ctx, rec.sink())
	cancel()
	waitDone(t, sub)

	if values, errs, completes := rec.events(); values+errs+completes != 0 {
		t.Errorf("cancelled subscription delivered events: values=%d errs=%d completes=%d", values, errs, completes)
	}
}

func TestStream_CancelFromSink(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, ImmediateStub[testAPI])
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok"})

	var (
		sub       *Subscription
		ready     = make(chan struct{})
		completed = make(chan struct{})
	)
	sub = Stream[User](client, api).Subscribe(context.Background(), Sink[User]{
		OnValue: func(User) {
			<-ready
			sub.Cancel()
		},
		OnComplete: func() { close(completed) },
	})
	close(ready)
	waitDone(t, sub)

	select {
	case <-completed:
	default:
		t.Error("cancel after delivery started must not suppress completion")
	}
}

func TestStream_CancelAfterDoneIsNoop(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, ImmediateStub[testAPI])
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok"})

	sub := Stream[User](client, api).Subscribe(context.Background(), Sink[User]{})
	waitDone(t, sub)
	sub.Cancel()
	sub.Cancel()
}

func TestAwait_ContextCancelled(t *testing.T) {
	srv := usersServer(t)
	client := newTestClient(t, srv, DelayedStub[testAPI](time.Minute))
	api := withMock(getUser(srv.Host()), MockSpec{FixtureName: "user_ok"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := Stream[User](client, api).Await(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if got != (User{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
}

// Request and Stream must reach the same outcome for the same call.
func TestStream_MatchesRequest(t *testing.T) {
	srv := usersServer(t)
	srv.JSON(http.MethodGet, "/users", http.StatusOK, `{"id":7,"name":"Ann"}`)
	srv.JSON(http.MethodGet, "/missing", http.StatusNotFound, `{}`)
	srv.JSON(http.MethodGet, "/garbled", http.StatusOK, `[1]`)
	srv.JSON(http.MethodGet, "/nameless", http.StatusOK, `{"id":3}`)

	paths := []string{"/users", "/missing", "/garbled", "/nameless"}
	mocks := []*MockSpec{
		nil,
		{FixtureName: "user_ok", FixtureKind: FileKindJSON},
		{FixtureName: "user_ok", FixtureKind: FileKindYAML},
		{FixtureName: "user_bad"},
		{FixtureName: "user_null"},
		{FixtureName: "user_gone"},
		{FixtureName: "user_ok", SendError: true},
	}
	policies := []StubPolicy{Never(), Immediate(), Delayed(time.Millisecond)}

	rng := rand.New(rand.NewPCG(6, 42))
	for i := range 100 {
		api := getUser(srv.Host())
		api.path = paths[rng.IntN(len(paths))]
		api.mock = mocks[rng.IntN(len(mocks))]
		policy := policies[rng.IntN(len(policies))]

		client := newTestClient(t, srv, func(testAPI) StubPolicy { return policy })

		want, wantErr := Request[User](context.Background(), client, api)
		got, gotErr := Stream[User](client, api).Await(context.Background())

		if got != want {
			t.Errorf("trial %d (%s %s %v): stream value %+v, request value %+v", i, policy, api.path, api.mock, got, want)
		}
		if (gotErr == nil) != (wantErr == nil) || KindOf(gotErr) != KindOf(wantErr) {
			t.Errorf("trial %d (%s %s %v): stream error %v, request error %v", i, policy, api.path, api.mock, gotErr, wantErr)
		}
		var fe *FixtureError
		if errors.As(wantErr, &fe) != errors.As(gotErr, &fe) {
			t.Errorf("trial %d: fixture error mismatch: %v vs %v", i, gotErr, wantErr)
		}
	}
}
