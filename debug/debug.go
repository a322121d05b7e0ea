//go:build !debug

// Package debug holds the build-tag controlled debug switch and assertions.
// Build with -tags=debug to enable them.
package debug

// Debug reports whether the debug build tag is set.
const Debug = false

// Assert does nothing unless the debug build tag is set, in which case it
// panics if the condition is false.
func Assert(condition bool, message ...string) {}
