package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/easymed/internal/pkg/stacktrace"
)

// dispatch runs handler and turns a panic into ErrHandlerPanic so the broker
// loop keeps going and the message is treated as failed.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		raw := debug.Stack()
		var stack any = string(raw)
		if paths := stacktrace.InternalPaths(raw); len(paths) > 0 {
			stack = paths
		}
		slog.ErrorContext(ctx, "panic in messaging handler",
			"driver", driver,
			"topic", msg.Topic,
			"message_id", msg.ID,
			"panic", rvr,
			"stack", stack,
		)
		err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, driver, rvr)
	}()

	return handler(ctx, msg)
}
