package server

import (
	"fmt"

	"github.com/golang/glog"

	"realtysite/internal/config"
	"realtysite/internal/database"
	"realtysite/internal/remote"
	"realtysite/internal/remote/rest"
	"realtysite/internal/remote/sqlbackend"
)

// OpenRemote builds the data service client selected by the config.
func OpenRemote(cfg *config.Config) (remote.Client, error) {
	switch cfg.RemoteBackend {
	case config.BackendREST:
		client, err := rest.New(rest.Options{URL: cfg.RemoteURL, AnonKey: cfg.RemoteAnonKey})
		if err != nil {
			return nil, err
		}
		glog.Infof("remote: using hosted service at %s", cfg.RemoteURL)
		return client, nil

	case config.BackendSQL:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		backend := sqlbackend.New(db, sqlbackend.Options{
			JWTSecret:   cfg.JWTSecret,
			AccessTTL:   cfg.JWTAccessTTL,
			AutoConfirm: cfg.AuthAutoConfirm,
		})
		if err := backend.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
}
