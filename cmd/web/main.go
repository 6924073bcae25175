package main

import (
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"figtrace/internal/config"
	"figtrace/internal/figures"
	"figtrace/internal/game"
	"figtrace/internal/handlers"
	"figtrace/pkg/trace"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg := config.FromEnv()
	if cfg.Debug {
		trace.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	lib, err := figures.Load(cfg.FiguresPath)
	if err != nil {
		// The game runs without figures and finishes each session immediately.
		log.Printf("figures: %v", err)
		lib = &figures.Library{}
	}
	log.Printf("loaded %d figures", lib.Len())

	store := game.NewStore(lib, game.Settings{
		Trace:          cfg.Trace,
		RoundMax:       cfg.RoundMax,
		RoundMin:       cfg.RoundMin,
		RoundCount:     cfg.RoundCount,
		Cooldown:       game.DefaultSettings().Cooldown,
		PointsPerRound: game.DefaultSettings().PointsPerRound,
	})

	if cfg.FiguresPath != "" {
		watcher, err := figures.NewWatcher(cfg.FiguresPath, 200*time.Millisecond, store.SetLibrary)
		if err != nil {
			log.Printf("figures watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	go sweep(store, cfg.SessionIdle)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(exceptStreams(middleware.Timeout(15 * time.Second)))

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	handlers.NewHomeHandler(store, cfg.Trace).RegisterRoutes(r)
	handlers.NewGameHandler(store, cfg.BaseURL).RegisterRoutes(r)
	handlers.NewFigureHandler(store).RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("listening on http://localhost%s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

// exceptStreams applies mw to every request but the long-lived event streams.
func exceptStreams(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/stream") {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

func sweep(store *game.Store, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for range ticker.C {
		if n := store.Sweep(idle); n > 0 {
			log.Printf("swept %d idle games", n)
		}
	}
}

//go:embed static/*
var embeddedStatic embed.FS
