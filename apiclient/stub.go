package apiclient

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StubMode is how a call's outcome is produced.
type StubMode int

const (
	// StubNever issues the call over the network.
	StubNever StubMode = iota
	// StubImmediate synthesizes the outcome without delay.
	StubImmediate
	// StubDelayed synthesizes the outcome after a delay.
	StubDelayed
)

func (m StubMode) String() string {
	switch m {
	case StubImmediate:
		return "immediate"
	case StubDelayed:
		return "delayed"
	default:
		return "never"
	}
}

// StubPolicy decides whether and how a call is stubbed. The zero value is Never.
type StubPolicy struct {
	mode  StubMode
	delay time.Duration
}

// Never returns the policy that always hits the network.
func Never() StubPolicy { return StubPolicy{mode: StubNever} }

// Immediate returns the policy that stubs with zero delay.
func Immediate() StubPolicy { return StubPolicy{mode: StubImmediate} }

// Delayed returns the policy that stubs after d. Negative d is treated as 0.
func Delayed(d time.Duration) StubPolicy {
	return StubPolicy{mode: StubDelayed, delay: max(d, 0)}
}

// Mode returns the policy's mode.
func (p StubPolicy) Mode() StubMode { return p.mode }

// Delay returns the stub delay; 0 unless the mode is StubDelayed.
func (p StubPolicy) Delay() time.Duration { return p.delay }

// Stubbed reports whether the network is bypassed.
func (p StubPolicy) Stubbed() bool { return p.mode != StubNever }

func (p StubPolicy) String() string {
	if p.mode == StubDelayed {
		return "delay:" + p.delay.String()
	}
	return p.mode.String()
}

// Wait blocks for the policy's delay. It returns ctx.Err() if ctx ends
// first and stops the timer either way.
func (p StubPolicy) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseStubPolicy parses "never", "immediate" or "delay:<duration>",
// e.g. "delay:250ms". The empty string is Never.
func ParseStubPolicy(s string) (StubPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "never":
		return Never(), nil
	case "immediate":
		return Immediate(), nil
	}
	if rest, ok := strings.CutPrefix(s, "delay:"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return StubPolicy{}, fmt.Errorf("apiclient: invalid stub delay %q: %w", rest, err)
		}
		if d < 0 {
			return StubPolicy{}, fmt.Errorf("apiclient: negative stub delay %q", rest)
		}
		return Delayed(d), nil
	}
	return StubPolicy{}, fmt.Errorf("apiclient: unknown stub policy %q", s)
}

// StubFunc picks the stub policy for an endpoint identifier. It runs once
// per call.
type StubFunc[A API] func(A) StubPolicy

// NeverStub sends every call to the network.
func NeverStub[A API](A) StubPolicy { return Never() }

// ImmediateStub stubs every call with zero delay.
func ImmediateStub[A API](A) StubPolicy { return Immediate() }

// DelayedStub stubs every call after d.
func DelayedStub[A API](d time.Duration) StubFunc[A] {
	policy := Delayed(d)
	return func(A) StubPolicy { return policy }
}

// EndpointName returns api.Name() when api implements Named and
// fmt.Sprint(api) otherwise.
func EndpointName(api any) string {
	if n, ok := api.(Named); ok {
		return n.Name()
	}
	return fmt.Sprint(api)
}
