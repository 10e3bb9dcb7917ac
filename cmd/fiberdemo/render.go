package main

import (
	"context"
	"fmt"
	"os"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/pkg/memdom"
	"github.com/delaneyj/fiberparty/pkg/scene"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/urfave/cli/v3"
)

func renderScene(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	s, err := scene.LoadFile(cmd.String(sceneKey))
	if err != nil {
		return err
	}

	var renderErr error
	host := scheduler.NewManualHost()
	dom := memdom.NewHost(memdom.WithLogger(logger))
	r := fiber.New(dom, scheduler.New(host, scheduler.WithLogger(logger)),
		fiber.WithLogger(logger),
		fiber.WithOnRenderError(func(_ *fiber.Root, err error) { renderErr = err }),
	)
	container := memdom.NewContainer()
	r.CreateContainer(container).Render(s.Element())
	host.Flush()
	if renderErr != nil {
		return fmt.Errorf("render %s: %w", cmd.String(sceneKey), renderErr)
	}

	logger.Info().Str("title", s.Title).Int("hostOps", len(dom.Ops())).Msg("rendered scene")

	switch f := cmd.String(formatKey); f {
	case "html":
		if err := memdom.WriteHTML(os.Stdout, container); err != nil {
			return err
		}
		fmt.Println()
	case "term":
		fmt.Println(newView(cmd).Render(container))
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	return nil
}
