// Package clock provides a tiny time abstraction.
//
// Token expiry and OTP challenge windows are computed from a Clocker rather
// than time.Now() so that expiry boundaries can be pinned down in tests with
// the Manual clock.
package clock
