package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// Printf adapts a slog.Logger to printf-style hooks used by third-party libraries.
// Lines are tagged with the component name and logged at the given level.
func Printf(l *slog.Logger, component string, level slog.Level) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		if l == nil {
			return
		}
		l.Log(context.Background(), level, fmt.Sprintf(format, args...), "component", component)
	}
}
