package app

import (
	"os"

	"shipping-carrier-service/internal/config"
	"shipping-carrier-service/internal/logx"
)

// NewLogger writes JSON to stdout at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, logx.ParseLevel(cfg.LogLevel))
}
