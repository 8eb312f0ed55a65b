// Package stacktrace trims goroutine stacks down to application frames.
package stacktrace

import (
	"runtime"
	"strconv"
	"strings"
)

// Internal returns "internal/<pkg>/<file>.go:<line>" entries for the
// caller's stack, skipping skip frames above the caller. Frames outside an
// internal/ directory (runtime, stdlib, third-party) are dropped.
func Internal(skip int) []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if idx := strings.Index(f.File, "/internal/"); idx != -1 {
			out = append(out, f.File[idx+1:]+":"+strconv.Itoa(f.Line))
		}
		if !more {
			break
		}
	}

	return out
}
