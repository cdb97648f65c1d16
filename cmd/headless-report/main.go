package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome game.BattleOutcome
	ended   bool
	ticks   int

	firstAttackTick    int
	firstDeathTick     int
	firstObjectiveTick int

	blueTotal     int
	redTotal      int
	blueSurvivors int
	redSurvivors  int

	blue game.TeamTally
	red  game.TeamTally

	objectiveHP map[game.ObjectiveID]float64
	killers     map[string]int // attacker label -> kills

	firstBloodLog string // log lines around the first death
}

// traceWindow is the number of ticks logged either side of the first death.
const traceWindow = 3

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenarioPath string
	var trace bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 36000, "max ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioPath, "scenario", "assets/scenarios/skirmish.yaml", "scenario roster file")
	flag.BoolVar(&trace, "trace", false, "print the battle log around each run's first death")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	scenario, err := game.LoadScenario(scenarioPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario.Name, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runScenario(i+1, seed, scenario, ticks)
		all = append(all, stats)
		printRun(stats)
		if trace {
			printFirstBlood(stats)
		}
	}

	printAggregate(all)
}

// runScenario plays one seeded match to its end or the tick limit.
func runScenario(runIndex int, seed int64, scenario *game.Scenario, ticks int) runStats {
	// The run seed replaces the roster's own.
	s := *scenario
	s.Seed = 0
	ts := game.NewTestSim(
		game.WithScenario(&s),
		game.WithSeed(seed),
	)
	ts.Start()
	ts.RunToEnd(ticks)
	return collect(runIndex, seed, ts)
}

func collect(runIndex int, seed int64, ts *game.TestSim) runStats {
	entries := ts.SimLog.Entries()
	rep := ts.Battle.Report()

	killers := map[string]int{}
	for _, e := range ts.SimLog.Filter("death", "killed") {
		killers[strings.TrimPrefix(e.Value, "by ")]++
	}

	firstDeath := firstTick(entries, "death", "killed", "")
	var firstBlood string
	if firstDeath >= 0 {
		firstBlood = ts.SimLog.FormatRange(firstDeath-traceWindow, firstDeath+traceWindow)
	}

	return runStats{
		runIndex:           runIndex,
		seed:               seed,
		outcome:            rep.Outcome,
		ended:              ts.Battle.Match().Ended(),
		ticks:              rep.Ticks,
		firstAttackTick:    firstTick(entries, "attack", "", ""),
		firstDeathTick:     firstDeath,
		firstObjectiveTick: firstTick(entries, "objective", "damage", ""),
		blueTotal:          rep.Tally[game.TeamBlue].Placed,
		redTotal:           rep.Tally[game.TeamRed].Placed,
		blueSurvivors:      rep.Survivors[game.TeamBlue],
		redSurvivors:       rep.Survivors[game.TeamRed],
		blue:               rep.Tally[game.TeamBlue],
		red:                rep.Tally[game.TeamRed],
		objectiveHP:        rep.ObjectiveHP,
		killers:            killers,
		firstBloodLog:      firstBlood,
	}
}

// firstTick returns the tick of the first matching entry, or -1. An empty key
// matches any key in the category.
func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || (key != "" && e.Key != key) {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// detectStalemate reports whether a run hit the tick limit without a winner.
func detectStalemate(rs runStats) (bool, string) {
	if rs.ended {
		return false, "decided"
	}
	switch {
	case rs.blueSurvivors == 0 && rs.redSurvivors == 0:
		return true, "mutual_annihilation"
	case rs.blueSurvivors > 0 && rs.redSurvivors > 0:
		return true, "both_armies_standing"
	default:
		return true, "objective_out_of_reach"
	}
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s ticks=%d\n", rs.outcome, rs.ticks)
	fmt.Printf("phase_markers: first_attack=%d first_death=%d first_objective_hit=%d\n",
		rs.firstAttackTick, rs.firstDeathTick, rs.firstObjectiveTick)
	fmt.Printf("survivors: blue=%d/%d red=%d/%d\n", rs.blueSurvivors, rs.blueTotal, rs.redSurvivors, rs.redTotal)
	fmt.Printf("blue: attacks=%d hits=%d misses=%d dropped=%d hit_rate=%.2f unit_dmg=%.0f obj_dmg=%.0f kills=%d\n",
		rs.blue.Attacks, rs.blue.Hits, rs.blue.Misses, rs.blue.Dropped, rs.blue.HitRate(), rs.blue.UnitDamage, rs.blue.ObjectiveDamage, rs.blue.Kills)
	fmt.Printf("red:  attacks=%d hits=%d misses=%d dropped=%d hit_rate=%.2f unit_dmg=%.0f obj_dmg=%.0f kills=%d\n",
		rs.red.Attacks, rs.red.Hits, rs.red.Misses, rs.red.Dropped, rs.red.HitRate(), rs.red.UnitDamage, rs.red.ObjectiveDamage, rs.red.Kills)
	fmt.Printf("objectives: A=%.0f B=%.0f\n", rs.objectiveHP[game.ObjectiveA], rs.objectiveHP[game.ObjectiveB])
	fmt.Printf("top_killers: %s\n", formatCounts(rs.killers))
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", reason)
	}
	fmt.Println()
}

func printFirstBlood(rs runStats) {
	if rs.firstBloodLog == "" {
		fmt.Printf("first_blood: none\n\n")
		return
	}
	fmt.Printf("first_blood (T=%d±%d):\n%s\n", rs.firstDeathTick, traceWindow, rs.firstBloodLog)
}

func printAggregate(all []runStats) {
	wins := map[game.BattleOutcome]int{}
	stalemates := map[string]int{}
	decidedTicks := make([]int, 0, len(all))
	var blue, red game.TeamTally
	killersGlobal := map[string]int{}

	for _, rs := range all {
		wins[rs.outcome]++
		if stale, reason := detectStalemate(rs); stale {
			stalemates[reason]++
		} else {
			decidedTicks = append(decidedTicks, rs.ticks)
		}
		blue = addTally(blue, rs.blue)
		red = addTally(red, rs.red)
		for label, n := range rs.killers {
			killersGlobal[label] += n
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("outcomes: blue_victory=%d red_victory=%d undecided=%d\n",
		wins[game.OutcomeBlueVictory], wins[game.OutcomeRedVictory], wins[game.OutcomeUndecided])
	fmt.Printf("win_rate: blue=%.2f red=%.2f\n",
		ratio(wins[game.OutcomeBlueVictory], len(all)), ratio(wins[game.OutcomeRedVictory], len(all)))
	fmt.Printf("decided_ticks: %s\n", formatTickStats(decidedTicks))
	fmt.Printf("hit_rate: blue=%.3f red=%.3f\n", blue.HitRate(), red.HitRate())
	fmt.Printf("avg_per_run: blue_attacks=%.1f red_attacks=%.1f blue_kills=%.1f red_kills=%.1f dropped=%.1f\n",
		avg(blue.Attacks, len(all)), avg(red.Attacks, len(all)), avg(blue.Kills, len(all)), avg(red.Kills, len(all)),
		avg(blue.Dropped+red.Dropped, len(all)))
	if len(stalemates) > 0 {
		fmt.Printf("stalemates: %s\n", formatCounts(stalemates))
	}
	fmt.Printf("top_killers: %s\n", formatCounts(killersGlobal))
}

func addTally(a, b game.TeamTally) game.TeamTally {
	a.Placed += b.Placed
	a.Attacks += b.Attacks
	a.Hits += b.Hits
	a.Misses += b.Misses
	a.Dropped += b.Dropped
	a.UnitDamage += b.UnitDamage
	a.ObjectiveDamage += b.ObjectiveDamage
	a.Kills += b.Kills
	return a
}

func avg(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func ratio(part, n int) float64 { return avg(part, n) }

func formatTickStats(ticks []int) string {
	if len(ticks) == 0 {
		return "n/a"
	}
	sorted := append([]int(nil), ticks...)
	sort.Ints(sorted)
	sum := 0
	for _, t := range sorted {
		sum += t
	}
	return fmt.Sprintf("min=%d median=%d max=%d avg=%.1f",
		sorted[0], sorted[len(sorted)/2], sorted[len(sorted)-1], avg(sum, len(sorted)))
}

// formatCounts renders the five largest counts, ties broken by name.
func formatCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > 5 {
		keys = keys[:5]
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, m[k])
	}
	return strings.Join(parts, ",")
}
