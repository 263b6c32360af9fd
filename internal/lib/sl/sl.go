// Package sl holds slog attribute helpers shared by the server and the CLI.
package sl

import (
	"fmt"
	"log/slog"
)

func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Secret keeps the first 4 characters of value, enough to tell ticket codes apart in logs.
func Secret(key, value string) slog.Attr {
	r := "***"
	if len(value) > 4 {
		r = fmt.Sprintf("%s***", value[0:4])
	}
	if value == "" {
		r = "?"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(r),
	}
}

func Module(mod string) slog.Attr {
	return slog.Attr{
		Key:   "mod",
		Value: slog.StringValue(mod),
	}
}
