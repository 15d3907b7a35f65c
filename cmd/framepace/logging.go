package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli"

	"github.com/gogpu/framepace"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// setupLogging installs a stderr logger at Warn, raised to Info by -v and
// Debug by -vv. Every record carries the run's session id.
func setupLogging(ctx *cli.Context) {
	level := slog.LevelWarn
	if ctx.GlobalBool("v") {
		level = slog.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(h).With("session", uuid.NewString())
	framepace.SetLogger(logger)
}
