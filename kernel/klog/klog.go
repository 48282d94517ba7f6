// Package klog provides the minimal structured logging primitive used across
// this repository. It plays the same role that kernel/kfmt/early plays in
// the freestanding original: every package that wants to report a condition
// calls klog.Printf with a "[module] message" prefix. Unlike kfmt/early,
// which is a zero-allocation Printf clone backed by a VGA/serial console
// driver (needed because the real kernel has no heap or console driver yet
// at the point it first logs), klog runs hosted and has neither constraint,
// so it is a thin wrapper around the standard log package.
package klog

import (
	"io"
	"log"
	"os"
)

// std is the logger used by Printf. Tests may swap it out via SetOutput.
var std = log.New(os.Stderr, "", log.LstdFlags)

// SetOutput redirects klog output; used by tests that want to assert on
// logged content or silence it entirely.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Printf logs a formatted message. Call sites use the "[module] message"
// convention established by the teacher package's early.Printf.
func Printf(format string, args ...interface{}) {
	std.Printf(format, args...)
}
