package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/perspectra/portal/internal/authtest"
	"github.com/perspectra/portal/internal/model"
)

// authstub serves the external authentication contract in-process, for
// local development without the real identity provider.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	addr := os.Getenv("AUTHSTUB_ADDR")
	if addr == "" {
		addr = ":4000"
	}

	srv := authtest.NewServer()

	// Seed a few accounts matching the demo roster so login works out
	// of the box
	seeds := []struct {
		email, name string
		role        model.Role
	}{
		{"maya.chen@perspectra.example", "Maya Chen", model.RoleHR},
		{"daniel.okafor@perspectra.example", "Daniel Okafor", model.RoleManager},
		{"priya.nair@perspectra.example", "Priya Nair", model.RoleEmployee},
	}
	for _, s := range seeds {
		if err := srv.Seed(s.email, "changeme", s.name, s.role); err != nil {
			logger.Error("failed to seed account", slog.String("email", s.email), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("auth stub listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
