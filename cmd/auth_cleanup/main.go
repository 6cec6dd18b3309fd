package main

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"realtysite/internal/config"
	"realtysite/internal/database"
	"realtysite/internal/remote/sqlbackend"
)

func main() {
	grace := flag.Duration("grace", 0, "keep sessions that ended less than this long ago")
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load()
	if err != nil {
		glog.Fatalf("config: %v", err)
	}
	if cfg.RemoteBackend != config.BackendSQL {
		glog.Fatalf("auth cleanup only applies to REMOTE_BACKEND=%s", config.BackendSQL)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		glog.Fatalf("db connect failed: %v", err)
	}
	backend := sqlbackend.New(db, sqlbackend.Options{JWTSecret: cfg.JWTSecret, AccessTTL: cfg.JWTAccessTTL})

	n, err := backend.PurgeSessions(context.Background(), time.Now().Add(-*grace))
	if err != nil {
		glog.Fatalf("cleanup auth_sessions failed: %v", err)
	}
	glog.Infof("auth cleanup completed: auth_sessions=%d", n)
}
