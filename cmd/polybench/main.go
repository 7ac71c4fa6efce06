// Polybench measures dispatch cost through poly handles against Go
// interface and closure baselines, and keeps run history for spotting
// regressions.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/poly/bench"
	"github.com/chazu/poly/report"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("polybench")

func main() {
	configPath := flag.String("config", "", "Path to polybench.toml (flags override it)")
	iterations := flag.Int("iterations", 0, "Timed iterations per scenario")
	warmup := flag.Int("warmup", -1, "Untimed warmup iterations per scenario")
	out := flag.String("out", "", "Write results to this file")
	format := flag.String("format", "", "Output format: table or cbor")
	history := flag.String("history", "", "Record results in this SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: polybench [options]\n\n")
		fmt.Fprintf(os.Stderr, "Benchmarks poly dispatch against interface and closure baselines.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  polybench                                # quick run, table output\n")
		fmt.Fprintf(os.Stderr, "  polybench -config polybench.toml         # run from config\n")
		fmt.Fprintf(os.Stderr, "  polybench -out run.cbor -format cbor     # machine-readable results\n")
		fmt.Fprintf(os.Stderr, "  polybench -history bench.db              # record run history\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	applyFlags(cfg, *iterations, *warmup, *out, *format, *history)
	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid options: %v", err)
		os.Exit(1)
	}

	runner := cfg.Runner()
	log.Infof("running %d iterations per scenario", runner.Iterations)

	started := time.Now()
	results, err := runner.Run()
	if err != nil {
		log.Errorf("benchmark failed: %v", err)
		os.Exit(1)
	}
	log.Infof("finished in %v", time.Since(started))

	if err := emit(cfg, started, results); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if cfg.History.Database != "" {
		if err := record(cfg.History.Database, started, results); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*bench.Config, error) {
	if path == "" {
		return bench.DefaultConfig(), nil
	}
	return bench.LoadConfig(path)
}

// applyFlags lets explicit flags override the config file.
func applyFlags(cfg *bench.Config, iterations, warmup int, out, format, history string) {
	if iterations > 0 {
		cfg.Runs.Iterations = iterations
	}
	if warmup >= 0 {
		cfg.Runs.Warmup = warmup
	}
	if out != "" {
		cfg.Output.Path = out
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if history != "" {
		cfg.History.Database = history
	}
}

func emit(cfg *bench.Config, started time.Time, results []bench.Result) error {
	switch cfg.Output.Format {
	case "cbor":
		data, err := report.MarshalBench(bench.ToReport(started, results))
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		if cfg.Output.Path == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(cfg.Output.Path, data, 0o644)

	default:
		text := formatTable(results)
		if cfg.Output.Path != "" {
			return os.WriteFile(cfg.Output.Path, []byte(text), 0o644)
		}
		fmt.Print(text)
		return nil
	}
}

func formatTable(results []bench.Result) string {
	out := fmt.Sprintf("%-12s %12s %12s\n", "scenario", "iterations", "ns/op")
	for _, r := range results {
		out += fmt.Sprintf("%-12s %12d %12.2f\n", r.Scenario, r.Iterations, r.NsPerOp())
	}
	return out
}

func record(path string, started time.Time, results []bench.Result) error {
	store, err := bench.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.RecordRun(started, results)
	if err != nil {
		return err
	}
	log.Infof("recorded run %d in %s", runID, path)
	return nil
}
