package cmd

import (
	"context"

	"github.com/Malowking/uniask/core/config"
	"github.com/gogf/gf/v2/frame/g"
)

func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	if err := config.ValidateConfiguration(ctx); err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}
}
