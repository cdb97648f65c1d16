package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/Garsondee/Arena-Skirmish/internal/spectate"
	"go.uber.org/zap"
)

func main() {
	var cfgPath, catalogPath, scenarioPath, addr string
	var autostart bool

	flag.StringVar(&cfgPath, "config", "assets/config.yaml", "battle config (empty for built-in defaults)")
	flag.StringVar(&catalogPath, "catalog", "", "unit catalogue override")
	flag.StringVar(&scenarioPath, "scenario", "", "pre-placed roster to load")
	flag.StringVar(&addr, "addr", "", "listen address (default :$PORT or :8080)")
	flag.BoolVar(&autostart, "autostart", false, "start the match as soon as the server is up")
	flag.Parse()

	if addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		addr = ":" + port
	}

	setup, err := game.LoadSetup(cfgPath, catalogPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
		_ = setup.Logger.Sync()
	}()

	hub := spectate.NewHub(logger.Named("spectate"))
	b := game.NewBattle(setup.Config, setup.Catalog,
		game.WithPresenter(hub),
		game.WithCombatLogger(setup.Logger),
	)
	if scenarioPath != "" {
		s, err := game.LoadScenario(scenarioPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := s.Apply(b); err != nil {
			log.Fatal(err)
		}
	}
	runner := game.NewRunner(b)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("runner stopped", zap.Error(err))
		}
	}()
	go func() {
		select {
		case <-runner.Ended():
			rep, err := runner.Report(ctx)
			if err != nil {
				return
			}
			logger.Info("match finished",
				zap.Stringer("outcome", rep.Outcome),
				zap.Int("ticks", rep.Ticks),
			)
		case <-ctx.Done():
		}
	}()
	if autostart {
		if err := runner.Start(ctx); err != nil {
			logger.Warn("autostart", zap.Error(err))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler(runner, setup.Config.ZoneFor))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		rep, err := runner.Report(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, rep.String())
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", zap.String("addr", addr), zap.Int("tick_rate", setup.Config.TickRate))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("ListenAndServe", zap.Error(err))
	}
}
