// Command advisor analyzes an OHLCV CSV file from the command line and
// prints the signal, indicators, and pattern matches.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"trading-advisor/config"
	"trading-advisor/internal/engine"
	"trading-advisor/internal/feed"
	"trading-advisor/internal/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "advisor:", err)
		os.Exit(1)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to OHLCV CSV file (required)")
	symbol := flag.String("symbol", "", "symbol label for the output")
	configPath := flag.String("config", "", "path to YAML config file")
	asJSON := flag.Bool("json", false, "emit the full analysis as JSON")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return fmt.Errorf("-csv is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return err
	}

	bars, err := feed.LoadCSV(*csvPath)
	if err != nil {
		return err
	}

	analysis, err := eng.Analyze(bars)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printText(*symbol, len(bars), analysis)
	return nil
}

func printText(symbol string, n int, a *model.Analysis) {
	if symbol != "" {
		fmt.Printf("%s (%d bars)\n", symbol, n)
	} else {
		fmt.Printf("%d bars\n", n)
	}

	fmt.Printf("\nSignal: %s  score=%+.1f  confidence=%.2f\n",
		a.Signal.Action, a.Signal.Score, a.Signal.Confidence)
	for _, r := range a.Signal.Reasons {
		fmt.Printf("  - %s\n", r)
	}

	fmt.Println("\nIndicators:")
	names := make([]string, 0, len(a.Indicators))
	for name := range a.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, name := range names {
		p := a.Indicators[name]
		if p.Ready {
			fmt.Fprintf(w, "  %s\t%.4f\n", name, p.Value)
		} else {
			fmt.Fprintf(w, "  %s\t(insufficient data)\n", name)
		}
	}
	w.Flush()

	last := n - 1
	var latest []model.PatternMatch
	for _, m := range a.Patterns {
		if m.Index == last {
			latest = append(latest, m)
		}
	}
	if len(latest) > 0 {
		fmt.Println("\nPatterns on latest bar:")
		for _, m := range latest {
			fmt.Printf("  %s (%s, %s)\n", m.Name, m.Direction, m.Strength)
		}
	}
	if len(a.Patterns) > len(latest) {
		fmt.Printf("\n%d pattern matches across the series\n", len(a.Patterns))
	}
}
