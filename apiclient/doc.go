// Package apiclient turns declarative endpoint descriptions into typed HTTP
// calls, with any endpoint's network call replaceable by a canned outcome.
//
// An application declares its endpoints as a type implementing API and
// dispatches them through a Client:
//
//	client := apiclient.New[UsersAPI](adapter, nil, nil)
//	user, err := apiclient.Request[User](ctx, client, GetUser(7))
//
// The same call is available as a stream:
//
//	sub := apiclient.Stream[User](client, GetUser(7)).Subscribe(ctx, apiclient.Sink[User]{
//	    OnValue: func(u User) { ... },
//	    OnError: func(err error) { ... },
//	})
//	defer sub.Cancel()
//
// Both forms share one pipeline and reach the same outcome.
//
// # Stubbing
//
// A StubFunc picks a policy per call: Never hits the network, Immediate and
// Delayed synthesize the outcome from the endpoint's MockSpec. A MockSpec
// with SendError fails with RequestError; otherwise the fixture
// <name>.<kind> is loaded through the client's FixtureLoader.
//
//	client := apiclient.New[UsersAPI](adapter, nil, apiclient.DelayedStub[UsersAPI](200*time.Millisecond),
//	    apiclient.WithFixtures(apiclient.NewFSLoader(fixtures)))
//
// # Errors
//
// Failures are *NetworkError with a Kind from a closed set, a *FixtureError
// for a broken fixture setup, or the context's error on cancellation.
package apiclient
