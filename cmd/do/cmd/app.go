package cmd

import (
	"context"
	"fmt"

	"github.com/mentorconnect/goaltracker/internal/app"
	"github.com/mentorconnect/goaltracker/internal/config"
	"github.com/mentorconnect/goaltracker/internal/logger"
)

// withApp loads config, builds the app and closes it after fn returns.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "", cfg.AppEnv)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() { _ = a.Close() }()

	return fn(a)
}
