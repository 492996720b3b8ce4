package testutil

import (
	"context"
	"testing"
	"testing/fstest"
)

// THelper ties TestComponent lifecycles to a testing.T.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t to provide helper methods.
//
//	func TestUsers(t *testing.T) {
//	    srv := testutil.NewServer("users")
//	    testutil.T(t).Setup(srv)
//	}
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and stops it when the test ends.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets a component to its initial state.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}

// Snapshot captures the current state of a component.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	snapshot, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snapshot
}

// Restore restores a component to a previously captured state.
func (h *THelper) Restore(c TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}

// Fixtures builds an in-memory fixture set from file name to contents,
// e.g. {"user_ok.json": `{"id":1}`}.
func Fixtures(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}
