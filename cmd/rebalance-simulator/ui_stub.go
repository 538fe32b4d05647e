//go:build console

package main

import (
	"fmt"

	"github.com/iwvelando/rebalance-simulator/internal/server"
	"go.uber.org/zap"
)

// runEmbeddedUI is a stub for console-only builds
func runEmbeddedUI(_ *zap.Logger, _ *server.Config) error {
	return fmt.Errorf("desktop window not available in console build, use the serve command instead")
}
