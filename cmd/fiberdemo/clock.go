package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/joeycumines/go-eventloop"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// newClock returns a component that counts up once per interval until it
// reaches ticks, then calls done. Updates are posted back onto the loop.
func newClock(ticks int, interval time.Duration, post func(func()), done func(), logger zerolog.Logger) *fiber.Component {
	return fiber.NewComponent("Clock", func(h *fiber.Hooks, _ fiber.Props) (any, error) {
		count, setCount := fiber.UseState(h, 0)

		fiber.UseEffect(h, func() func() {
			ticker := time.NewTicker(interval)
			quit := make(chan struct{})
			go func() {
				for range ticks {
					select {
					case <-quit:
						return
					case <-ticker.C:
						post(func() { setCount.Update(func(n int) int { return n + 1 }) })
					}
				}
			}()
			return func() {
				logger.Debug().Msg("clock unmounted")
				ticker.Stop()
				close(quit)
			}
		}, []any{})

		fiber.UseEffect(h, func() func() {
			if count >= ticks {
				done()
			}
			return nil
		}, []any{count})

		return fiber.H("div", fiber.Props{"style": map[string]string{"border": "rounded", "padding": "1"}},
			fiber.H("b", nil, "tick "),
			fiber.Text(count),
		), nil
	})
}

func runClock(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	loop, err := eventloop.New()
	if err != nil {
		return err
	}
	post := func(fn func()) {
		if err := loop.Submit(fn); err != nil {
			logger.Warn().Err(err).Msg("post update")
		}
	}

	container := memdom.NewContainer()
	r := fiber.New(
		memdom.NewHost(memdom.WithLogger(logger)),
		scheduler.New(scheduler.NewLoopHost(loop, logger), scheduler.WithLogger(logger)),
		fiber.WithLogger(logger),
		printOnCommit(newView(cmd), container),
	)
	root := r.CreateContainer(container)

	finished := make(chan struct{})
	var once sync.Once
	done := func() { once.Do(func() { close(finished) }) }
	clock := newClock(int(cmd.Uint(ticksKey)), cmd.Duration(intervalKey), post, done, logger)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := loop.Submit(func() { root.Render(fiber.H(clock, nil)) }); err != nil {
			return err
		}
		select {
		case <-gctx.Done():
			return nil
		case <-finished:
		}
		post(root.Unmount)
		shutdownLoop(loop, logger)
		return nil
	})
	return g.Wait()
}
