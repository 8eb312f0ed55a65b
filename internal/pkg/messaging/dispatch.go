package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// responder guards a message against double ack/nack.
type responder struct {
	done atomic.Bool
}

// claim reports whether the caller is the first to respond.
func (r *responder) claim() bool {
	return r.done.CompareAndSwap(false, true)
}

func (r *responder) responded() bool {
	return r.done.Load()
}

type trackedMessage interface {
	Message
	responded() bool
}

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, driver string, msg trackedMessage, handler Handler, autoAck bool) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "topic", msg.Topic(), "panic", rvr, "stack", stacktrace.Internal(2))
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}

		if !autoAck || msg.responded() {
			return
		}

		var rerr error
		if err == nil {
			rerr = msg.Ack(ctx)
		} else {
			rerr = msg.Nack(ctx)
		}
		if rerr != nil {
			slog.WarnContext(ctx, "messaging auto-ack failed", "driver", driver, "topic", msg.Topic(), "error", rerr)
		}
	}()

	return handler(ctx, msg)
}
