//go:build !console

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iwvelando/rebalance-simulator/internal/server"
	webview "github.com/webview/webview_go"
	"go.uber.org/zap"
)

// runEmbeddedUI starts the web server on a local port and shows it in a
// webview window until the window is closed.
func runEmbeddedUI(logger *zap.Logger, cfg *server.Config) error {
	listener, url, err := listen(cfg.Address)
	if err != nil {
		return err
	}

	srv := newHTTPServer(logger, cfg)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("embedded server stopped",
				zap.String("op", "main.runEmbeddedUI"),
				zap.Error(err),
			)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("opening desktop window",
		zap.String("op", "main.runEmbeddedUI"),
		zap.String("url", url),
	)

	w := webview.New(false)
	if w == nil {
		return fmt.Errorf("failed to create webview window")
	}
	defer w.Destroy()

	w.SetTitle("Rebalance Simulator")
	w.SetSize(1200, 800, webview.HintNone)
	w.Navigate(url)

	// Run blocks until the window is closed
	w.Run()
	return nil
}
