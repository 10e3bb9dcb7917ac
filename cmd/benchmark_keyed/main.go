package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

type mutation struct {
	name  string
	apply func(keys []int, rng *rand.Rand) []int
}

var mutations = []mutation{
	{"reverse", func(keys []int, _ *rand.Rand) []int {
		out := slices.Clone(keys)
		slices.Reverse(out)
		return out
	}},
	{"rotate", func(keys []int, _ *rand.Rand) []int {
		return append(slices.Clone(keys[1:]), keys[0])
	}},
	{"swap ends", func(keys []int, _ *rand.Rand) []int {
		out := slices.Clone(keys)
		out[0], out[len(out)-1] = out[len(out)-1], out[0]
		return out
	}},
	{"shuffle", func(keys []int, rng *rand.Rand) []int {
		out := slices.Clone(keys)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}},
	{"drop half", func(keys []int, _ *rand.Rand) []int {
		out := make([]int, 0, len(keys)/2)
		for i, k := range keys {
			if i%2 == 0 {
				out = append(out, k)
			}
		}
		return out
	}},
}

type benchmarkConfig struct {
	size       int
	iterations int
}

var (
	size   = flag.Int("size", 0, "run only this row count")
	rounds = flag.Int("rounds", 0, "override the number of rounds per mutation")
)

func main() {
	flag.Parse()
	log.Print("Starting keyed list benchmark, please wait...")
	defer log.Print("Finished keyed list benchmark")

	cfgs := []benchmarkConfig{
		{size: 100, iterations: 2000},
		{size: 1_000, iterations: 200},
		{size: 10_000, iterations: 20},
	}
	if *size > 0 {
		cfgs = []benchmarkConfig{{size: *size, iterations: 100}}
	}
	if *rounds > 0 {
		for i := range cfgs {
			cfgs[i].iterations = *rounds
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"mutation", "size", "nTimes", "time", "updateRate", "moves", "creates", "removes", "updates",
	})

	for _, cfg := range cfgs {
		for _, m := range mutations {
			log.Printf("Running '%s' on %d rows", m.name, cfg.size)
			rng := rand.New(rand.NewSource(int64(cfg.size)))

			var total time.Duration
			var moves, creates, removes, updates int
			for range cfg.iterations {
				dom, host, root := newRoot()
				keys := make([]int, cfg.size)
				for i := range keys {
					keys[i] = i
				}
				root.Render(rows(keys))
				host.Flush()
				dom.Reset()

				next := m.apply(keys, rng)
				start := time.Now()
				root.Render(rows(next))
				host.Flush()
				total += time.Since(start)

				moves += dom.Count(memdom.OpInsert) + dom.Count(memdom.OpAppend)
				creates += dom.Count(memdom.OpCreate)
				removes += dom.Count(memdom.OpRemove)
				updates += dom.Count(memdom.OpUpdate)
			}

			rate := float64(cfg.iterations) / total.Seconds()
			table.Append([]string{
				m.name,
				humanize.Comma(int64(cfg.size)),
				humanize.Comma(int64(cfg.iterations)),
				(total / time.Duration(cfg.iterations)).String(),
				fmt.Sprintf("%s/s", humanize.Comma(int64(rate))),
				humanize.Comma(int64(moves / cfg.iterations)),
				humanize.Comma(int64(creates / cfg.iterations)),
				humanize.Comma(int64(removes / cfg.iterations)),
				humanize.Comma(int64(updates / cfg.iterations)),
			})
		}
	}

	table.Render()
}

func newRoot() (*memdom.Host, *scheduler.ManualHost, *fiber.Root) {
	host := scheduler.NewManualHost()
	dom := memdom.NewHost()
	r := fiber.New(dom, scheduler.New(host))
	return dom, host, r.CreateContainer(memdom.NewContainer())
}

func rows(keys []int) *fiber.Element {
	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = fiber.H("tr", fiber.Props{"key": k}, fiber.H("td", nil, strconv.Itoa(k)))
	}
	return fiber.H("tbody", nil, items...)
}
