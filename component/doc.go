// Package component defines the lifecycle interfaces shared by apikit's
// infrastructure pieces: the HTTP transport adapter and the fake upstream
// server used in tests.
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: self-reported configuration summary
package component
