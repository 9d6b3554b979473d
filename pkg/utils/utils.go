package utils

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang-deal-scout/pkg/logger"

	"go.uber.org/zap"
)

// TimeNowUTC returns the current time in UTC.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// GoSafe runs fn in a goroutine and logs any panic instead of crashing.
func GoSafe(log *logger.Logger, fn func()) {
	go func() {
		defer RecoverPanic(log, "goroutine")
		fn()
	}()
}

// RecoverPanic must be deferred directly. It recovers a panic and logs it
// with its stack under the given scope.
func RecoverPanic(log *logger.Logger, scope string) {
	if r := recover(); r != nil {
		log.Error("Recovered from panic",
			logger.StringField("scope", scope),
			logger.StringField("panic", fmt.Sprint(r)),
			zap.ByteString("stack", debug.Stack()),
		)
	}
}

// ShouldContinue reports whether ctx is still live, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
