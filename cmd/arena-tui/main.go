package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/Garsondee/Arena-Skirmish/internal/tui"
	"github.com/gdamore/tcell/v2"
)

func main() {
	var cfgPath, catalogPath, scenarioPath string

	flag.StringVar(&cfgPath, "config", "assets/config.yaml", "battle config (empty for built-in defaults); set combat_log.path, stderr is the terminal")
	flag.StringVar(&catalogPath, "catalog", "", "unit catalogue override")
	flag.StringVar(&scenarioPath, "scenario", "", "pre-placed roster to load")
	flag.Parse()

	setup, err := game.LoadSetup(cfgPath, catalogPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = setup.Logger.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	r := tui.NewRenderer(screen, setup.Config, setup.Catalog)
	b := game.NewBattle(setup.Config, setup.Catalog,
		game.WithPresenter(r),
		game.WithCombatLogger(setup.Logger),
	)
	if scenarioPath != "" {
		s, err := game.LoadScenario(scenarioPath)
		if err != nil {
			screen.Fini()
			log.Fatal(err)
		}
		if err := s.Apply(b); err != nil {
			screen.Fini()
			log.Fatal(err)
		}
	}
	runner := game.NewRunner(b)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() { _ = runner.Run(ctx) }()

	app := tui.NewApp(screen, runner, r, setup.Config, setup.Catalog)
	err = app.Run(ctx)
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

	// Stop the runner so the battle can be read from this goroutine.
	stop()
	<-runner.Done()
	fmt.Print(b.Report().String())
}
