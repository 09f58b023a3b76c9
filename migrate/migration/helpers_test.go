package migration

import (
	"log/slog"

	"github.com/satishbabariya/arangomigrate/internal/logging"
)

func nopLogger() *slog.Logger {
	return logging.Discard()
}
