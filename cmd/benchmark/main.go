package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	sizes   = []int{10, 100, 1_000}
	size    = flag.Int("size", 0, "run only this list size")
	iters   = flag.Int("iters", 100, "iterations per case")
	profile = flag.String("pprof", "default.pgo", "CPU profile output, empty to disable")
	slicing = flag.Bool("slicing", true, "time-slice concurrent renders")
)

func main() {
	flag.Parse()
	if *size > 0 {
		sizes = []int{*size}
	}

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	runCases(false)
	runCases(true)
}

type harness struct {
	host *scheduler.ManualHost
	root *fiber.Root
}

func newHarness() *harness {
	host := scheduler.NewManualHost()
	r := fiber.New(memdom.NewHost(), scheduler.New(host), fiber.WithTimeSlicing(*slicing))
	return &harness{host: host, root: r.CreateContainer(memdom.NewContainer())}
}

func (h *harness) render(el any) {
	h.root.Render(el)
	h.host.Flush()
}

func list(n, generation int) *fiber.Element {
	items := make([]any, n)
	for i := range n {
		items[i] = fiber.H("li", fiber.Props{"key": i}, strconv.Itoa(i), ":", strconv.Itoa(generation))
	}
	return fiber.H("ul", nil, items...)
}

type benchCase struct {
	name string
	// setup returns the measured step. It is called once per size.
	setup func(n int) func(iter int)
}

var cases = []benchCase{
	{
		name: "mount",
		setup: func(n int) func(int) {
			return func(int) { newHarness().render(list(n, 0)) }
		},
	},
	{
		name: "update all text",
		setup: func(n int) func(int) {
			h := newHarness()
			h.render(list(n, 0))
			return func(i int) { h.render(list(n, i+1)) }
		},
	},
	{
		name: "append/remove",
		setup: func(n int) func(int) {
			h := newHarness()
			h.render(list(n, 0))
			return func(i int) { h.render(list(n+i%2, 0)) }
		},
	},
	{
		name: "unmount",
		setup: func(n int) func(int) {
			return func(int) {
				h := newHarness()
				h.render(list(n, 0))
				h.root.Unmount()
				h.host.Flush()
			}
		},
	},
}

func runCases(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Fiber reconciler")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, c := range cases {
		for _, n := range sizes {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})
			step := c.setup(n)
			for i := range *iters {
				start := time.Now()
				step(i)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("%s: %d", c.name, n),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
