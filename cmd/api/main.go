package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"realtysite/internal/config"
	"realtysite/internal/pkg/pubsub"
	"realtysite/internal/server"
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := server.OpenRemote(cfg)
	if err != nil {
		glog.Fatalf("remote: %v", err)
	}

	rdb, err := pubsub.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		glog.Fatalf("pubsub: %v", err)
	}
	bus := pubsub.New(rdb, pubsub.DefaultChannel)
	defer bus.Close()

	srv := server.New(cfg, client, bus)
	srv.Start(ctx)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine,
	}

	go func() {
		glog.Infof("listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	glog.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("http shutdown: %v", err)
	}
}
