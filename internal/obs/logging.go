// Package obs holds the structured logger shared by the service.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide JSON logger. It discards output until InitLogger runs,
// so packages can log from tests without setup.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// InitLogger sets Logger to a JSON handler on stdout.
// GO_ENV=dev lowers the level to debug.
func InitLogger(goEnv string) {
	level := slog.LevelInfo
	if strings.EqualFold(goEnv, "dev") {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	Logger = slog.New(h)
	slog.SetDefault(Logger)
}
