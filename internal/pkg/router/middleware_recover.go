package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/otpauth/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 without leaking the
// panic value. http.ErrAbortHandler is re-raised so net/http can abort.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			slog.ErrorContext(r.Context(), "handler panicked", "panic", v, "stack", stacktrace.Internal(2))
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
