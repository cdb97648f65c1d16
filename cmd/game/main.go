package main

import (
	"flag"
	"log"

	"github.com/Garsondee/Arena-Skirmish/internal/audio"
	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var cfgPath, catalogPath, scenarioPath string
	var mute bool
	var volume float64

	flag.StringVar(&cfgPath, "config", "assets/config.yaml", "battle config (empty for built-in defaults)")
	flag.StringVar(&catalogPath, "catalog", "", "unit catalogue override")
	flag.StringVar(&scenarioPath, "scenario", "", "pre-placed roster to load")
	flag.BoolVar(&mute, "mute", false, "disable sound")
	flag.Float64Var(&volume, "volume", 0.4, "sound volume (0-1)")
	flag.Parse()

	setup, err := game.LoadSetup(cfgPath, catalogPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = setup.Logger.Sync() }()

	var extra []game.Presenter
	if !mute {
		player := audio.NewPlayer(volume)
		if err := player.Init(); err != nil {
			// Non-fatal, the game runs without sound.
			log.Printf("audio disabled: %v", err)
		} else {
			defer player.Close()
			extra = append(extra, player)
		}
	}

	g := game.New(setup.Config, setup.Catalog, setup.Logger, extra...)
	if scenarioPath != "" {
		s, err := game.LoadScenario(scenarioPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := g.LoadScenario(s); err != nil {
			log.Fatal(err)
		}
	}

	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Arena Skirmish")
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(setup.Config.TickRate)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
