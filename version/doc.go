// Package version provides build version information for apikit.
//
// Version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/apikit/version.Version=1.0.0"
package version
