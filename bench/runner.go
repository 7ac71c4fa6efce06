// Package bench measures dispatch cost through poly handles against a
// classic Go interface and a boxed closure, over the same trivial
// "draw" workload. It is a pure consumer of the poly API.
package bench

import (
	"fmt"
	"time"

	"github.com/chazu/poly"
	"github.com/chazu/poly/report"
)

// Scenario names accepted in configs and stored in run history.
const (
	ScenarioRef     = "poly-ref"
	ScenarioObject  = "poly-object"
	ScenarioShared  = "poly-shared"
	ScenarioIface   = "iface"
	ScenarioClosure = "closure"
)

// AllScenarios lists every scenario in report order.
var AllScenarios = []string{ScenarioRef, ScenarioObject, ScenarioShared, ScenarioIface, ScenarioClosure}

// Result is one scenario's outcome.
type Result struct {
	Scenario   string
	Iterations int
	Elapsed    time.Duration
}

// NsPerOp returns the mean cost of one dispatched call.
func (r Result) NsPerOp() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Iterations)
}

// circle is the benchmark workload: draw always answers 7, matching
// the baseline implementations exactly so every scenario does the same
// work per call.
type circle struct {
	radius int
}

func (c *circle) Draw() int { return 7 }

var (
	drawMethod = poly.NewMethod("bench:draw")
	drawable   = poly.MustInterface(poly.ConstSig(drawMethod))
)

// sink keeps the measured loops from being eliminated.
var sink int

// Runner executes benchmark scenarios with fixed iteration counts.
type Runner struct {
	Iterations int
	Warmup     int
	Scenarios  []string // nil means AllScenarios
}

// NewRunner returns a runner with defaults suitable for a quick run.
func NewRunner() *Runner {
	return &Runner{
		Iterations: 1_000_000,
		Warmup:     10_000,
	}
}

// Run executes the selected scenarios in order.
func (r *Runner) Run() ([]Result, error) {
	scenarios := r.Scenarios
	if len(scenarios) == 0 {
		scenarios = AllScenarios
	}
	if r.Iterations <= 0 {
		return nil, fmt.Errorf("bench: iterations must be positive, got %d", r.Iterations)
	}

	x := poly.NewExtensions()
	poly.ExtendConst0(x, drawMethod, (*circle).Draw)

	results := make([]Result, 0, len(scenarios))
	for _, name := range scenarios {
		run, err := r.scenario(x, name)
		if err != nil {
			return nil, err
		}
		elapsed, err := run(r.Warmup, r.Iterations)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Scenario: name, Iterations: r.Iterations, Elapsed: elapsed})
	}
	return results, nil
}

// scenario returns the timing function for a named scenario.
func (r *Runner) scenario(x *poly.Extensions, name string) (func(warmup, n int) (time.Duration, error), error) {
	switch name {
	case ScenarioRef:
		return func(warmup, n int) (time.Duration, error) {
			c := circle{radius: 2}
			h, err := poly.RefTo(x, drawable, &c)
			if err != nil {
				return 0, err
			}
			return timeCalls(warmup, n, func() int { return h.Call(drawMethod).(int) }), nil
		}, nil

	case ScenarioObject:
		return func(warmup, n int) (time.Duration, error) {
			h, err := poly.NewObject(x, drawable, circle{radius: 2})
			if err != nil {
				return 0, err
			}
			defer h.Release()
			return timeCalls(warmup, n, func() int { return h.Call(drawMethod).(int) }), nil
		}, nil

	case ScenarioShared:
		return func(warmup, n int) (time.Duration, error) {
			h, err := poly.NewShared(x, drawable, circle{radius: 2})
			if err != nil {
				return 0, err
			}
			defer h.Release()
			return timeCalls(warmup, n, func() int { return h.Call(drawMethod).(int) }), nil
		}, nil

	case ScenarioIface:
		return func(warmup, n int) (time.Duration, error) {
			var d interface{ Draw() int } = &circle{radius: 2}
			return timeCalls(warmup, n, d.Draw), nil
		}, nil

	case ScenarioClosure:
		return func(warmup, n int) (time.Duration, error) {
			c := circle{radius: 2}
			draw := func() int { return c.Draw() }
			return timeCalls(warmup, n, draw), nil
		}, nil
	}
	return nil, fmt.Errorf("bench: unknown scenario %q", name)
}

// timeCalls runs the warmup untimed, then times n calls.
func timeCalls(warmup, n int, call func() int) time.Duration {
	sum := 0
	for i := 0; i < warmup; i++ {
		sum += call()
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		sum += call()
	}
	elapsed := time.Since(start)
	sink = sum
	return elapsed
}

// ToReport converts results into their wire form.
func ToReport(createdAt time.Time, results []Result) *report.BenchReport {
	out := &report.BenchReport{CreatedAt: createdAt.Unix()}
	for _, r := range results {
		out.Results = append(out.Results, report.BenchResult{
			Scenario:   r.Scenario,
			Iterations: r.Iterations,
			NsPerOp:    r.NsPerOp(),
			TotalNs:    r.Elapsed.Nanoseconds(),
		})
	}
	return out
}
