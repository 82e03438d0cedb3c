// Package version reports build information for the /info endpoint and the
// startup log. Values are stamped with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/clinicq/version.Version=1.2.0" ./cmd/clinicq
//
// Unset values fall back to the VCS settings embedded by the Go toolchain.
package version
