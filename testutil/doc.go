// Package testutil provides test infrastructure for apikit: a fake upstream
// API server and in-memory fixture sets.
//
// TestComponent extends component.Component with Reset, Snapshot and
// Restore so test state can be isolated between cases.
//
//	func TestGetUser(t *testing.T) {
//	    srv := testutil.NewServer("users").
//	        JSON(http.MethodGet, "/users", http.StatusOK, `{"id":7,"name":"Ann"}`)
//	    testutil.T(t).Setup(srv)
//
//	    // point the endpoint at srv.Host() ...
//	    if srv.TotalHits() != 1 { ... }
//	}
package testutil
