package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/pkg/scene"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/fsnotify/fsnotify"
	"github.com/joeycumines/go-eventloop"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 2 * time.Second

func watchScene(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(cmd.String(sceneKey))
	if err != nil {
		return err
	}

	loop, err := eventloop.New()
	if err != nil {
		return err
	}
	container := memdom.NewContainer()
	r := fiber.New(
		memdom.NewHost(memdom.WithLogger(logger)),
		scheduler.New(scheduler.NewLoopHost(loop, logger), scheduler.WithLogger(logger)),
		fiber.WithLogger(logger),
		printOnCommit(newView(cmd), container),
		fiber.WithOnRenderError(func(_ *fiber.Root, err error) {
			logger.Error().Err(err).Msg("render failed")
		}),
	)
	root := r.CreateContainer(container)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		reload := func() error {
			s, err := scene.LoadFile(path)
			if err != nil {
				logger.Warn().Err(err).Msg("scene not loaded")
				return nil
			}
			el := s.Element()
			return loop.Submit(func() { root.Render(el) })
		}
		if err := reload(); err != nil {
			return err
		}
		for {
			select {
			case <-gctx.Done():
				return nil
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn().Err(err).Msg("watch")
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				logger.Debug().Str("op", ev.Op.String()).Msg("scene changed")
				if err := reload(); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	shutdownLoop(loop, logger)
	return err
}

func shutdownLoop(loop *eventloop.Loop, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := loop.Shutdown(ctx); err != nil && !errors.Is(err, eventloop.ErrLoopTerminated) {
		logger.Debug().Err(err).Msg("loop shutdown")
	}
}
