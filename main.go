package main

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"

	// Variables such as TOWNVIEW_PROFILE may live in a .env next to the town.
	_ "github.com/joho/godotenv/autoload"

	"github.com/JeremyKalmus/town-view-sub001/internal/cmd"
)

const defaultProfileAddr = "localhost:6060"

// serveProfiles exposes the pprof handlers when TOWNVIEW_PROFILE is set.
// TOWNVIEW_PROFILE_ADDR moves the listener off the default address.
func serveProfiles() {
	if os.Getenv("TOWNVIEW_PROFILE") == "" {
		return
	}
	addr := os.Getenv("TOWNVIEW_PROFILE_ADDR")
	if addr == "" {
		addr = defaultProfileAddr
	}
	go func() {
		slog.Info("Profiling endpoint enabled", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			slog.Error("Profiling endpoint stopped", "addr", addr, "error", err)
		}
	}()
}

func main() {
	serveProfiles()
	cmd.Execute()
}
