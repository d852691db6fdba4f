package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/randcc/cashcarry/config"
	"github.com/randcc/cashcarry/internal/api"
	"github.com/randcc/cashcarry/internal/app"
	"github.com/randcc/cashcarry/internal/webserver"
)

var (
	h        = flag.Bool("h", false, "show help")
	conffile = flag.String("c", "cashcarry.yml", "config file")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Shutdown()

	webserver.Init(cfg, application)
	api.InitRouter(application)

	errCh := make(chan error, 1)
	go func() {
		errCh <- webserver.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("http server failed: %v", err)
		}
	case sig := <-sigCh:
		zap.S().Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webserver.Shutdown(ctx); err != nil {
			zap.S().Errorf("shutdown failed: %v", err)
		}
	}
}
