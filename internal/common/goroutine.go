package common

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ternarybob/arbor"
)

// SafeGo runs fn in a goroutine with panic recovery. Panics are logged and swallowed.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer recoverAndLog(logger, name)
		fn()
	}()
}

// SafeGoWithContext is SafeGo that skips fn when ctx is already cancelled
func SafeGoWithContext(ctx context.Context, logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer recoverAndLog(logger, name)

		select {
		case <-ctx.Done():
			logger.Debug().Str("goroutine", name).Msg("Goroutine cancelled before start")
			return
		default:
		}

		fn()
	}()
}

func recoverAndLog(logger arbor.ILogger, name string) {
	if r := recover(); r != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		logger.Error().
			Str("goroutine", name).
			Str("panic", fmt.Sprintf("%v", r)).
			Str("stack", string(buf[:n])).
			Msg("Recovered from panic in goroutine")
	}
}
