// Package version reports the build of the running binary.
//
// Version and GitCommit are set at link time; otherwise the module and
// VCS data recorded by the Go toolchain are used:
//
//	go build -ldflags "-X github.com/kbukum/sessionkit/version.Version=1.2.0" ./cmd/sessiond
package version
