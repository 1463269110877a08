// Package buildinfo exposes the version of the pwdless binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/pwdless-go/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/pwdless-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// When they are not injected, the commit and build time fall back to the
// VCS stamp recorded by the Go toolchain, and the Go version to the
// running runtime.
package buildinfo
